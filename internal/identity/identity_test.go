package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rlyeh-labs/cthulhu-chat/internal/store"
)

func TestGenerateEldritchNameGrammar(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		name := GenerateEldritchName()
		if name == "" {
			t.Fatal("generated name is empty")
		}
		if !IsEldritchName(name) {
			t.Fatalf("generated name %q does not match the fragment grammar", name)
		}
	}
}

func TestGetOrCreatePersistsAcrossReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := store.NewMemory()

	first, err := NewStore(repo, nil).GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !first.Generated {
		t.Fatal("expected a freshly generated identity")
	}

	// A new Store over the same repository simulates a reload.
	second, err := NewStore(repo, nil).GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("GetOrCreate after reload failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity changed across reload: %q != %q", second.ID, first.ID)
	}
	if second.Generated {
		t.Fatal("reloaded identity should not be marked generated")
	}
}

func TestGetOrCreateCachesWithinProcess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &countingRepo{Repository: store.NewMemory()}
	ids := NewStore(repo, nil)

	first, err := ids.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := ids.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("cached identity changed: %q != %q", first.ID, second.ID)
	}
	if got := repo.loads(); got != 1 {
		t.Fatalf("expected exactly one storage read, got %d", got)
	}
	if got := repo.saves(); got != 1 {
		t.Fatalf("expected exactly one storage write, got %d", got)
	}
}

func TestGetOrCreateDegradesWhenStorageUnavailable(t *testing.T) {
	t.Parallel()

	ident, err := NewStore(&brokenRepo{}, nil).GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("expected degraded identity, got error: %v", err)
	}
	if !ident.Valid() {
		t.Fatal("degraded identity must still be usable")
	}
	if !IsEldritchName(ident.ID) {
		t.Fatalf("degraded identity %q does not match the grammar", ident.ID)
	}
}

func TestRenameOverwritesIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := store.NewMemory()
	ids := NewStore(repo, nil)

	if _, err := ids.GetOrCreate(ctx); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	renamed, err := ids.Rename(ctx, "Dagonoth")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.ID != "Dagonoth" {
		t.Fatalf("unexpected renamed identity: %q", renamed.ID)
	}

	stored, err := repo.LoadIdentity(ctx)
	if err != nil {
		t.Fatalf("LoadIdentity failed: %v", err)
	}
	if stored != "Dagonoth" {
		t.Fatalf("rename was not persisted, stored %q", stored)
	}

	if _, err := ids.Rename(ctx, "   "); err == nil {
		t.Fatal("expected error renaming to a blank identity")
	}
}

// countingRepo counts identity reads and writes.
type countingRepo struct {
	store.Repository
	mu        sync.Mutex
	loadCount int
	saveCount int
}

func (c *countingRepo) LoadIdentity(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.loadCount++
	c.mu.Unlock()
	return c.Repository.LoadIdentity(ctx)
}

func (c *countingRepo) SaveIdentity(ctx context.Context, id string) error {
	c.mu.Lock()
	c.saveCount++
	c.mu.Unlock()
	return c.Repository.SaveIdentity(ctx, id)
}

func (c *countingRepo) loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadCount
}

func (c *countingRepo) saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveCount
}

// brokenRepo fails every operation.
type brokenRepo struct{}

var errStorageDown = errors.New("storage unavailable")

func (b *brokenRepo) LoadIdentity(context.Context) (string, error) { return "", errStorageDown }
func (b *brokenRepo) SaveIdentity(context.Context, string) error   { return errStorageDown }
func (b *brokenRepo) LoadScore(context.Context) (int, error)       { return 0, errStorageDown }
func (b *brokenRepo) SaveScore(context.Context, int) error         { return errStorageDown }
func (b *brokenRepo) LoadConversationID(context.Context) (string, error) {
	return "", errStorageDown
}
func (b *brokenRepo) SaveConversationID(context.Context, string) error { return errStorageDown }
func (b *brokenRepo) ClearConversationID(context.Context) error        { return errStorageDown }
func (b *brokenRepo) Ping(context.Context) error                       { return errStorageDown }
func (b *brokenRepo) Close() error                                     { return nil }
