package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

func TestIndexCmd_Use(t *testing.T) {
	assert.Equal(t, "index", indexCmd.Use)

	flag := indexCmd.Flags().Lookup("rebuild")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestIndexCmd_Attach(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("index")

	require.NoError(t, err)
	assert.Contains(t, out, "Attached to existing index (42 entries)")
	assert.Equal(t, 1, ts.index.ensured)
	assert.Zero(t, ts.index.rebuilt)
}

func TestIndexCmd_Rebuild(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.events = []domain.BatchEvent{
		{Number: 1, Total: 2, Size: 20},
		{Number: 2, Total: 2, Size: 5, Err: errors.New("rate limited")},
	}
	ts.index.rebuildReport = &domain.IndexReport{Files: 9, Chunks: 25, Batches: 2, FailedBatches: 1, Stored: 20}

	out, _, err := execute("index", "--rebuild")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.index.rebuilt)
	assert.Contains(t, out, "batch 1/2 (20 chunks)")
	assert.Contains(t, out, "batch 2/2 (5 chunks): rate limited")
	assert.Contains(t, out, "Indexed 9 files into 25 chunks")
	assert.Contains(t, out, "Failed batches: 1")
	assert.Contains(t, out, "Stored entries: 20")
	assert.Nil(t, ts.index.observer, "observer is cleared after the run")
}

func TestIndexCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = domain.ErrIndexEmpty

	_, _, err := execute("index", "--rebuild")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexEmpty)
	assert.Contains(t, err.Error(), "indexing failed")
}
