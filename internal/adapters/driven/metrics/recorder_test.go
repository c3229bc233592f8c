package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.QuestionAnswered("envelope")
	r.QuestionAnswered("envelope")
	r.QuestionAnswered("raw")
	r.ToolInvoked("calculator", true)
	r.RetrievalCompleted(true)
	r.BatchIngested(20, false)
	r.BatchIngested(20, true)
	r.ObserveChat(300 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(r.questions.WithLabelValues("envelope")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.questions.WithLabelValues("raw")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.toolCalls.WithLabelValues("calculator", "true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.retrievals.WithLabelValues("true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.batches.WithLabelValues("failed")), 0)
	assert.InDelta(t, 20, testutil.ToFloat64(r.chunksIngested), 0)
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.QuestionAnswered("partial")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `finrag_questions_total{outcome="partial"} 1`)
}

func TestNewRecorder_Independent(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.QuestionAnswered("raw")

	assert.InDelta(t, 0, testutil.ToFloat64(b.questions.WithLabelValues("raw")), 0)
}
