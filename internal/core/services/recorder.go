package services

import (
	"time"

	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// nopRecorder discards every observation.
type nopRecorder struct{}

func (nopRecorder) QuestionAnswered(string)   {}
func (nopRecorder) ToolInvoked(string, bool)  {}
func (nopRecorder) RetrievalCompleted(bool)   {}
func (nopRecorder) BatchIngested(int, bool)   {}
func (nopRecorder) ObserveChat(time.Duration) {}

func recorderOrNop(r driven.Recorder) driven.Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
