// Terminal client for the Cthulhu chat service.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rlyeh-labs/cthulhu-chat/internal/api"
	"github.com/rlyeh-labs/cthulhu-chat/internal/config"
	"github.com/rlyeh-labs/cthulhu-chat/internal/domain"
	"github.com/rlyeh-labs/cthulhu-chat/internal/identity"
	"github.com/rlyeh-labs/cthulhu-chat/internal/session"
	"github.com/rlyeh-labs/cthulhu-chat/internal/store"
)

func main() {
	// Logs go to stderr at warn level so the chat transcript on stdout
	// stays readable.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Durable storage failure degrades to an in-memory session rather than
	// refusing to start.
	var repo store.Repository
	repo, err = store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Warn("Durable storage unavailable, session will not persist", "db_path", cfg.DBPath, "error", err)
		repo = store.NewMemory()
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Warn("Failed to close store", "error", closeErr)
		}
	}()

	ids := identity.NewStore(repo, logger)
	ident, err := ids.GetOrCreate(ctx)
	if err != nil {
		slog.Error("Failed to establish identity", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(api.Config{
		BaseURL:        cfg.ServerURL,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	sess := session.New(client, repo, ident, logger)
	sess.Restore(ctx)

	fmt.Printf("Chat with Cthulhu — you are %s (score %d)\n", ident.ID, sess.Score().Value)
	fmt.Println("Commands: /upload <path>, /reset, /score, /name <id>, /quit")

	run(ctx, sess, ids)
}

func run(ctx context.Context, sess *session.Session, ids *identity.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	rendered := len(sess.Messages())

	for {
		fmt.Print("You> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "/reset":
			sess.Reset(ctx)
			rendered = 0
			fmt.Println("Conversation reset.")
		case line == "/score":
			score := sess.Score()
			fmt.Printf("Score: %d\n", score.Value)
			if score.Notes != "" {
				fmt.Printf("Notes: %s\n", score.Notes)
			}
		case strings.HasPrefix(line, "/name "):
			rename(ctx, ids, strings.TrimPrefix(line, "/name "))
		case strings.HasPrefix(line, "/upload "):
			upload(ctx, sess, strings.TrimSpace(strings.TrimPrefix(line, "/upload ")))
		default:
			sess.SendMessage(ctx, line)
			rendered = render(sess, rendered)
		}
	}
}

// render prints messages appended since the last render and returns the new
// high-water mark. The user's own line is skipped; the terminal already
// shows it.
func render(sess *session.Session, rendered int) int {
	msgs := sess.Messages()
	for _, msg := range msgs[min(rendered, len(msgs)):] {
		if msg.Sender == domain.SenderUser {
			continue
		}
		fmt.Printf("%s> %s\n", msg.Sender, msg.Text)
	}
	return len(msgs)
}

func rename(ctx context.Context, ids *identity.Store, name string) {
	// The in-flight session keeps its identity; the new name takes effect
	// on the next run.
	ident, err := ids.Rename(ctx, name)
	if err != nil {
		fmt.Printf("Could not rename: %v\n", err)
		return
	}
	fmt.Printf("Saved. You will be %s next time.\n", ident.ID)
}

func upload(ctx context.Context, sess *session.Session, path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Could not open %s: %v\n", path, err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close uploaded file", "path", path, "error", closeErr)
		}
	}()

	before := sess.Score().Value
	sess.UploadFile(ctx, filepath.Base(path), f)
	after := sess.Score().Value
	if after > before {
		fmt.Printf("The deep accepted your offering: +%d (score %d)\n", after-before, after)
	} else {
		fmt.Println("The offering sank without a trace.")
	}
}
