// Package identity provides anonymous per-device identity primitives.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rlyeh-labs/cthulhu-chat/internal/domain"
	"github.com/rlyeh-labs/cthulhu-chat/internal/store"
)

// Fragments of the eldritch name grammar. A generated name is one prefix
// concatenated with one suffix, each drawn uniformly.
var (
	namePrefixes = []string{"Cth", "Azath", "Nyarl", "Yog", "Shub", "Dagon", "Hastur", "Ithaqua", "Tsath"}
	nameSuffixes = []string{"ulhu", "oth", "athotep", "Sothoth", "Niggurath", "ogtha", "oggua", "ogga"}
)

// GenerateEldritchName synthesizes a pseudo-random themed identifier.
func GenerateEldritchName() string {
	prefix := namePrefixes[rand.IntN(len(namePrefixes))]
	suffix := nameSuffixes[rand.IntN(len(nameSuffixes))]
	return prefix + suffix
}

// IsEldritchName reports whether id matches the generated name grammar.
func IsEldritchName(id string) bool {
	for _, p := range namePrefixes {
		if !strings.HasPrefix(id, p) {
			continue
		}
		for _, s := range nameSuffixes {
			if id == p+s {
				return true
			}
		}
	}
	return false
}

// Store owns generation and durable persistence of the anonymous identity.
// It caches the identity after the first load; the cached value is stable
// for the rest of the process unless explicitly renamed.
type Store struct {
	repo   store.Repository
	logger *slog.Logger

	mu     sync.Mutex
	cached domain.Identity
}

// NewStore creates an identity store backed by repo.
func NewStore(repo store.Repository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: repo, logger: logger}
}

// GetOrCreate returns the durable identity, generating and persisting a new
// one if none is stored. If durable storage is unavailable the returned
// identity is in-memory only; this is logged, not fatal.
func (s *Store) GetOrCreate(ctx context.Context) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.Valid() {
		return s.cached, nil
	}

	stored, err := s.repo.LoadIdentity(ctx)
	if err != nil {
		s.logger.Warn("identity storage unavailable, using in-memory identity", "error", err)
		s.cached = domain.Identity{ID: GenerateEldritchName(), Generated: true}
		return s.cached, nil
	}

	if stored != "" {
		s.cached = domain.Identity{ID: stored, Generated: false}
		return s.cached, nil
	}

	id := GenerateEldritchName()
	if err := s.repo.SaveIdentity(ctx, id); err != nil {
		s.logger.Warn("failed to persist generated identity", "user_id", id, "error", err)
	}
	s.cached = domain.Identity{ID: id, Generated: true}
	return s.cached, nil
}

// Rename overwrites the identity with a user-chosen identifier. The write is
// an idempotent overwrite of the single durable key.
func (s *Store) Rename(ctx context.Context, id string) (domain.Identity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Identity{}, fmt.Errorf("identity cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveIdentity(ctx, id); err != nil {
		return domain.Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	s.cached = domain.Identity{ID: id, Generated: false}
	return s.cached, nil
}
