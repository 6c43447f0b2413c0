package memory

import (
	"context"
	"time"

	infraoutbox "stayhub/internal/infra/outbox"
)

// Claim hands the oldest due record to a worker.
func (s *Store) Claim(_ context.Context, _ string) (*infraoutbox.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, e := range s.events {
		if e.state != infraoutbox.StateNew && e.state != infraoutbox.StateFailed {
			continue
		}
		if e.nextTry.After(now) {
			continue
		}
		e.state = infraoutbox.StateClaimed
		return &infraoutbox.Message{
			ID:         e.record.ID,
			Name:       e.record.Name,
			Payload:    append([]byte(nil), e.record.Payload...),
			OccurredAt: e.record.OccurredAt,
			Aggregate:  e.record.Aggregate,
			Headers:    copyHeaders(e.record.Headers),
			Attempts:   e.attempts,
		}, nil
	}
	return nil, nil
}

func (s *Store) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entry(id); e != nil {
		e.state = infraoutbox.StateSent
	}
	return nil
}

func (s *Store) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entry(id); e != nil {
		e.state = infraoutbox.StateFailed
		e.attempts++
		e.nextTry = next
		e.lastError = errMsg
	}
	return nil
}

// Pending counts records not yet published.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.events {
		if e.state != infraoutbox.StateSent {
			n++
		}
	}
	return n
}

func (s *Store) entry(id string) *outboxEntry {
	for _, e := range s.events {
		if e.record.ID == id {
			return e
		}
	}
	return nil
}

func copyHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ infraoutbox.Source = (*Store)(nil)
