package session

import (
	"context"

	"github.com/rlyeh-labs/cthulhu-chat/internal/api"
)

// The reconciler is the sole writer of score and notes state. The two remote
// flows carry different semantics and must not be conflated: a chat response
// replaces the score outright (the server is authoritative for the whole
// dialogue), while a file score is a one-off bonus added on top. Addition
// commutes across interleavings, and a chat replacement always uses its own
// response payload rather than a pre-call snapshot, so overlapping
// operations cannot corrupt the value.

// applyChatUpdateLocked merges score and notes from one completed chat
// response. Absent fields mean "no change". Callers must hold s.mu.
func (s *Session) applyChatUpdateLocked(ctx context.Context, resp *api.ChatResponse) {
	if resp.UpdatedScore != nil {
		value := *resp.UpdatedScore
		if value < 0 {
			s.logger.Warn("ignoring negative score from chat response", "score", value)
		} else {
			s.score.Value = value
			s.persistScoreLocked(ctx)
		}
	}
	if resp.UpdatedNotes != nil {
		s.score.Notes = *resp.UpdatedNotes
	}
}

// applyFileScore adds a file-derived delta to the current score.
func (s *Session) applyFileScore(ctx context.Context, delta int) {
	if delta < 0 {
		s.logger.Warn("ignoring negative file score delta", "delta", delta)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.score.Value += delta
	s.persistScoreLocked(ctx)
}

// persistScoreLocked writes the committed score immediately so a restart
// never loses it. The write is a single-key overwrite carrying the complete
// new value. Callers must hold s.mu.
func (s *Session) persistScoreLocked(ctx context.Context) {
	if err := s.repo.SaveScore(ctx, s.score.Value); err != nil {
		s.logger.Warn("failed to persist score", "score", s.score.Value, "error", err)
	}
}
