//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestClient(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, nil)
}

func TestChatRoundTrip(t *testing.T) {
	t.Parallel()

	var gotReq ChatRequest
	r := chi.NewRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		if err := json.NewDecoder(req.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"R'lyeh","conversation_id":"c1","updated_score":5,"updated_notes":"heard"}`))
	})

	client := newTestClient(t, r)
	convID := "c0"
	resp, err := client.Chat(context.Background(), ChatRequest{
		Message:        "hello",
		UserID:         "Cthulhu",
		ConversationID: &convID,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if gotReq.Message != "hello" || gotReq.UserID != "Cthulhu" {
		t.Fatalf("unexpected request on the wire: %+v", gotReq)
	}
	if gotReq.ConversationID == nil || *gotReq.ConversationID != "c0" {
		t.Fatalf("conversation_id not carried: %+v", gotReq.ConversationID)
	}

	if resp.Message != "R'lyeh" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.ConversationID == nil || *resp.ConversationID != "c1" {
		t.Fatalf("unexpected conversation_id: %+v", resp.ConversationID)
	}
	if resp.UpdatedScore == nil || *resp.UpdatedScore != 5 {
		t.Fatalf("unexpected updated_score: %+v", resp.UpdatedScore)
	}
	if resp.UpdatedNotes == nil || *resp.UpdatedNotes != "heard" {
		t.Fatalf("unexpected updated_notes: %+v", resp.UpdatedNotes)
	}
}

func TestChatNullConversationIDOnTheWire(t *testing.T) {
	t.Parallel()

	var raw map[string]json.RawMessage
	r := chi.NewRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	client := newTestClient(t, r)
	resp, err := client.Chat(context.Background(), ChatRequest{Message: "hi", UserID: "u"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	// A conversation-less turn must send an explicit null, not omit the key.
	if string(raw["conversation_id"]) != "null" {
		t.Fatalf("conversation_id on the wire = %s, want null", raw["conversation_id"])
	}

	// Absent optional fields mean "no change".
	if resp.ConversationID != nil || resp.UpdatedScore != nil || resp.UpdatedNotes != nil {
		t.Fatalf("absent optional fields decoded as present: %+v", resp)
	}
}

func TestChatRemoteError(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"the stars are wrong"}`))
	})

	client := newTestClient(t, r)
	_, err := client.Chat(context.Background(), ChatRequest{Message: "hi", UserID: "u"})
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if !strings.Contains(err.Error(), "the stars are wrong") {
		t.Fatalf("error does not carry the remote message: %v", err)
	}
}

func TestChatMissingMessageIsDecodeError(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, r)
	_, err := client.Chat(context.Background(), ChatRequest{Message: "hi", UserID: "u"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/upload", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
		}
		if got := req.FormValue("user_id"); got != "Cthulhu" {
			t.Errorf("user_id = %q, want Cthulhu", got)
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			_ = file.Close()
			if header.Filename != "f.txt" {
				t.Errorf("filename = %q, want f.txt", header.Filename)
			}
		}
		_, _ = w.Write([]byte(`{"filename":"f.txt","file_id":"42"}`))
	})

	client := newTestClient(t, r)
	resp, err := client.UploadFile(context.Background(), "Cthulhu", "f.txt", strings.NewReader("offering"))
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if resp.Filename != "f.txt" || resp.FileID != "42" {
		t.Fatalf("unexpected upload response: %+v", resp)
	}
}

func TestFileScore(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/get_file_score/{file_id}", func(w http.ResponseWriter, req *http.Request) {
		if got := chi.URLParam(req, "file_id"); got != "42" {
			t.Errorf("file_id = %q, want 42", got)
		}
		_, _ = w.Write([]byte(`{"score":3}`))
	})

	client := newTestClient(t, r)
	score, err := client.FileScore(context.Background(), "42")
	if err != nil {
		t.Fatalf("FileScore failed: %v", err)
	}
	if score != 3 {
		t.Fatalf("score = %d, want 3", score)
	}
}

func TestFileScoreUnknownFile(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/get_file_score/{file_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown file"}`))
	})

	client := newTestClient(t, r)
	_, err := client.FileScore(context.Background(), "nope")
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestChatTransportFailure(t *testing.T) {
	t.Parallel()

	// Point at a closed server to force a transport error.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := client.Chat(context.Background(), ChatRequest{Message: "hi", UserID: "u"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, ErrRemote) || errors.Is(err, ErrDecode) {
		t.Fatalf("transport failure misclassified: %v", err)
	}
}
