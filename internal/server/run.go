package server

import (
	"time"

	"github.com/MeKo-Tech/linecrop/internal/dataset"
	"github.com/google/uuid"
)

// Publish records a finished document in the metrics and run status and
// broadcasts it to event clients. It is safe for concurrent use.
func (s *Server) Publish(res *dataset.DocumentResult) {
	if res == nil {
		return
	}
	RecordDocument(res)
	runInFlight.Dec()

	s.mu.Lock()
	runID := s.status.RunID
	if res.Err != nil {
		s.status.Failed++
	}
	s.status.Pages += res.Pages
	s.status.Lines += res.Lines
	s.status.Skipped += res.Skipped
	s.mu.Unlock()

	s.hub.Broadcast(newEvent(EventDocument, DocumentEvent{
		RunID:      runID,
		Path:       res.Path,
		Pages:      res.Pages,
		Lines:      res.Lines,
		Skipped:    res.Skipped,
		DurationMs: res.Duration.Milliseconds(),
		Error:      res.Error(),
	}))
}

// OnStart resets the run status for a run over total documents and assigns
// the run a new ID.
func (s *Server) OnStart(total int) {
	runInFlight.Set(float64(total))

	s.mu.Lock()
	s.status = RunStatus{
		RunID:     uuid.NewString(),
		State:     StateRunning,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}
	snapshot := s.status
	s.mu.Unlock()

	s.hub.Broadcast(newEvent(EventRunStarted, snapshot))
}

// OnProgress updates the number of finished documents.
func (s *Server) OnProgress(current, total int) {
	s.mu.Lock()
	s.status.Done = current
	s.status.Total = total
	s.mu.Unlock()
}

// OnError is a no-op; failures reach clients through Publish.
func (s *Server) OnError(int, error) {}

// OnComplete marks the run finished and broadcasts the final status.
func (s *Server) OnComplete() {
	runInFlight.Set(0)

	s.mu.Lock()
	s.status.State = StateCompleted
	snapshot := s.status
	s.mu.Unlock()

	s.hub.Broadcast(newEvent(EventRunCompleted, snapshot))
}
