package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

// Calculator evaluates arithmetic expressions in a closed environment:
// numeric literals, operators, a fixed set of math functions and constants.
// Any other identifier is a compile error. All arithmetic runs on float64.
type Calculator struct {
	options []expr.Option
}

// NewCalculator creates a calculator with builtins disabled.
func NewCalculator() *Calculator {
	opts := []expr.Option{
		expr.Env(calculatorConstants()),
		expr.DisableAllBuiltins(),
		expr.Patch(floatArithmetic{}),
		expr.Function(divideFunc, divide),
		expr.Function(moduloFunc, modulo),
	}
	for name, fn := range unaryMath {
		opts = append(opts, expr.Function(name, unary(name, fn)))
	}
	opts = append(opts,
		expr.Function("pow", binary("pow", math.Pow)),
		expr.Function("min", variadic("min", math.Min)),
		expr.Function("max", variadic("max", math.Max)),
		expr.Function("round", round),
	)
	return &Calculator{options: opts}
}

// Evaluate returns the numeric result of expression formatted as a string.
func (c *Calculator) Evaluate(expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", errors.New("empty expression")
	}
	// The expression language reads these as comments and would drop the rest.
	if strings.Contains(expression, "//") {
		return "", errors.New("floor division '//' is not supported, use floor(a / b)")
	}
	if strings.Contains(expression, "/*") {
		return "", errors.New("comments are not supported")
	}

	program, err := expr.Compile(expression, c.options...)
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, calculatorConstants())
	if err != nil {
		return "", err
	}
	return formatNumber(out)
}

const (
	divideFunc = "__div"
	moduloFunc = "__mod"
)

// floatArithmetic rewrites integer literals as floats, and division and
// modulo as calls that reject a zero divisor.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		var fn string
		switch n.Operator {
		case "/":
			fn = divideFunc
		case "%":
			fn = moduloFunc
		default:
			return
		}
		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: fn},
			Arguments: []ast.Node{n.Left, n.Right},
		})
	}
}

func divide(params ...any) (any, error) {
	x, y, err := operands("/", params)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errors.New("division by zero")
	}
	return x / y, nil
}

// modulo follows the sign of the divisor.
func modulo(params ...any) (any, error) {
	x, y, err := operands("%", params)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errors.New("modulo by zero")
	}
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r, nil
}

func operands(op string, params []any) (float64, float64, error) {
	if len(params) != 2 {
		return 0, 0, fmt.Errorf("%s expects two operands", op)
	}
	x, err := toFloat(op, params[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := toFloat(op, params[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func calculatorConstants() map[string]any {
	return map[string]any{
		"pi":  math.Pi,
		"e":   math.E,
		"tau": 2 * math.Pi,
		"inf": math.Inf(1),
	}
}

var unaryMath = map[string]func(float64) float64{
	"abs":   math.Abs,
	"ceil":  math.Ceil,
	"floor": math.Floor,
	"sqrt":  math.Sqrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"log2":  math.Log2,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
}

func unary(name string, fn func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s() takes exactly one argument (%d given)", name, len(params))
		}
		x, err := toFloat(name, params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func binary(name string, fn func(float64, float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("%s() takes exactly two arguments (%d given)", name, len(params))
		}
		x, err := toFloat(name, params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(name, params[1])
		if err != nil {
			return nil, err
		}
		return fn(x, y), nil
	}
}

func variadic(name string, fn func(float64, float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) == 0 {
			return nil, fmt.Errorf("%s() expected at least one argument", name)
		}
		acc, err := toFloat(name, params[0])
		if err != nil {
			return nil, err
		}
		for _, p := range params[1:] {
			x, err := toFloat(name, p)
			if err != nil {
				return nil, err
			}
			acc = fn(acc, x)
		}
		return acc, nil
	}
}

// round(x) rounds to an integer; round(x, n) rounds to n decimal places.
func round(params ...any) (any, error) {
	if len(params) != 1 && len(params) != 2 {
		return nil, fmt.Errorf("round() takes one or two arguments (%d given)", len(params))
	}
	x, err := toFloat("round", params[0])
	if err != nil {
		return nil, err
	}
	if len(params) == 1 {
		return math.RoundToEven(x), nil
	}
	n, err := toFloat("round", params[1])
	if err != nil {
		return nil, err
	}
	scale := math.Pow(10, math.Trunc(n))
	return math.RoundToEven(x*scale) / scale, nil
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s(): argument must be a number, not %T", name, v)
	}
}

func formatNumber(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		if math.IsNaN(n) {
			return "", errors.New("math domain error")
		}
		if math.IsInf(n, 0) {
			return "", errors.New("result is out of range")
		}
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		}
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("result is not a number: %v", v)
	}
}
