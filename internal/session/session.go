// Package session holds the client-side conversation state and keeps it in
// sync with the remote chat and scoring service. It owns the conversation
// lifecycle, the optimistic message exchange, the file upload correlation,
// and the single merge point for score and notes updates.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rlyeh-labs/cthulhu-chat/internal/api"
	"github.com/rlyeh-labs/cthulhu-chat/internal/domain"
	"github.com/rlyeh-labs/cthulhu-chat/internal/store"
)

// RemoteService is the slice of the remote API the session depends on.
// *api.Client satisfies it.
type RemoteService interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	UploadFile(ctx context.Context, userID, filename string, content io.Reader) (*api.UploadResponse, error)
	FileScore(ctx context.Context, fileID string) (int, error)
}

// Session is the single owner of conversation, score and notes state. All
// mutation goes through its methods; the presentation layer only reads.
type Session struct {
	remote RemoteService
	repo   store.Repository
	logger *slog.Logger

	mu         sync.Mutex
	identity   domain.Identity
	conv       domain.Conversation
	score      domain.ScoreState
	lastUpload *domain.UploadedFileRecord
	waiting    bool

	// epoch increments on every conversation reset. Responses dispatched
	// under an older epoch must not write conversation state when they land.
	epoch uint64
}

// New creates a session for the given identity. Call Restore to load any
// durable score and conversation id from a previous run.
func New(remote RemoteService, repo store.Repository, ident domain.Identity, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		remote:   remote,
		repo:     repo,
		identity: ident,
		logger:   logger,
	}
}

// Restore loads the durably stored score and conversation id. Storage
// failures degrade to a fresh in-memory session and are logged, not fatal.
func (s *Session) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.repo.LoadScore(ctx)
	if err != nil {
		s.logger.Warn("failed to restore score, starting from zero", "error", err)
	} else {
		s.score.Value = value
	}

	convID, err := s.repo.LoadConversationID(ctx)
	if err != nil {
		s.logger.Warn("failed to restore conversation id", "error", err)
		return
	}
	s.conv.ID = convID
}

// Identity returns the identity the session was created with.
func (s *Session) Identity() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// ConversationID returns the server-assigned conversation id, or "" if the
// server has not assigned one yet.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.ID
}

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.conv.Messages))
	copy(out, s.conv.Messages)
	return out
}

// Score returns the current score state.
func (s *Session) Score() domain.ScoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Waiting reports whether a chat exchange is in flight. File uploads do not
// toggle this flag.
func (s *Session) Waiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

// Reset atomically discards the conversation id, the message log, and the
// durable record of the previous id. The score is untouched. A chat reply
// still in flight when Reset is called will not resurrect the old id.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.conv = domain.Conversation{}
	if err := s.repo.ClearConversationID(ctx); err != nil {
		s.logger.Warn("failed to clear stored conversation id", "error", err)
	}
}

// adoptConversationIDLocked applies first-assignment-wins semantics: once a
// conversation id is held, neither an identical echo nor a divergent id
// changes it. Callers must hold s.mu.
func (s *Session) adoptConversationIDLocked(ctx context.Context, id string) {
	if id == "" || s.conv.ID != "" {
		return
	}
	s.conv.ID = id
	// Best effort: losing this write only costs conversation continuity
	// across a restart, never committed score.
	if err := s.repo.SaveConversationID(ctx, id); err != nil {
		s.logger.Warn("failed to persist conversation id", "conversation_id", id, "error", err)
	}
}
