package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcCmd_Evaluates(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("calc", "2 + 3 * 4")

	require.NoError(t, err)
	assert.Equal(t, "14\n", out)
	assert.Zero(t, ts.loads, "calc does not load providers")
}

func TestCalcCmd_InvalidExpression(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("calc", "2 +")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "Error: ")
}

func TestCalcCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	calculator = nil

	_, _, err := execute("calc", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculator not configured")
}
