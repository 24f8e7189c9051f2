package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rlyeh-labs/cthulhu-chat/internal/api"
	"github.com/rlyeh-labs/cthulhu-chat/internal/domain"
)

// SendMessage runs one optimistic chat exchange: the user message is
// appended before the request is dispatched and is never rolled back. On
// failure a System message describes the problem; the error is logged and
// swallowed. The waiting flag is cleared on every exit path.
func (s *Session) SendMessage(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	if !s.identity.Valid() {
		s.mu.Unlock()
		return
	}
	s.conv.Append(domain.SenderUser, text)
	s.waiting = true
	epoch := s.epoch
	userID := s.identity.ID
	var convID *string
	if s.conv.ID != "" {
		id := s.conv.ID
		convID = &id
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.waiting = false
		s.mu.Unlock()
	}()

	resp, err := s.remote.Chat(ctx, api.ChatRequest{
		Message:        text,
		UserID:         userID,
		ConversationID: convID,
	})
	if err != nil {
		s.logger.Warn("chat exchange failed", "user_id", userID, "error", err)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch == epoch {
			s.conv.Append(domain.SenderSystem, fmt.Sprintf("Failed to reach the server: %v", err))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// The conversation was reset while this turn was in flight. The
		// reply belongs to the discarded conversation, but score and notes
		// are tied to the identity and still apply.
		s.logger.Info("dropping chat reply for reset conversation", "user_id", userID)
		s.applyChatUpdateLocked(ctx, resp)
		return
	}

	s.conv.Append(domain.SenderBot, resp.Message)
	if resp.ConversationID != nil {
		s.adoptConversationIDLocked(ctx, *resp.ConversationID)
	}
	s.applyChatUpdateLocked(ctx, resp)
}
