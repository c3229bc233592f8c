package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

var calcCmd = &cobra.Command{
	Use:   "calc [expression]",
	Short: "Evaluate an arithmetic expression",
	Long: `Evaluates an expression with the calculator offered to the model.

Examples:
  finrag calc "(27.0-20.1)/20.1*100"
  finrag calc "round(sqrt(2) * 100) / 100"`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	if calculator == nil {
		return errors.New("calculator not configured")
	}

	out, err := calculator.Invoke(cmd.Context(), domain.CalculatorToolName, args[0])
	if err != nil {
		return err
	}
	if msg, failed := strings.CutPrefix(out, "Error: "); failed {
		return errors.New(msg)
	}
	cmd.Println(out)
	return nil
}
