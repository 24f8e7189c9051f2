// Package stub implements a development stand-in for the remote chat and
// scoring service. Replies are canned and scoring is arbitrary; the point is
// a faithful wire contract for exercising the client end to end.
package stub

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var replies = []string{
	"Ph'nglui mglw'nafh Cthulhu R'lyeh wgah'nagl fhtagn.",
	"The stars are almost right.",
	"Your words ripple through the deep.",
	"R'lyeh stirs. Continue.",
	"The Great Old Ones are listening.",
}

// Handler serves the three endpoints of the remote service contract.
type Handler struct {
	logger *slog.Logger

	mu        sync.Mutex
	turns     map[string]int // user_id -> completed chat turns
	scores    map[string]int // user_id -> cumulative score
	fileSizes map[string]int64
	filenames map[string]string
}

// NewHandler creates a stub handler with empty in-memory state.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		turns:     make(map[string]int),
		scores:    make(map[string]int),
		fileSizes: make(map[string]int64),
		filenames: make(map[string]string),
	}
}

// Routes mounts the stub endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/chat", h.handleChat)
	r.Post("/upload", h.handleUpload)
	r.Get("/get_file_score/{file_id}", h.handleFileScore)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	Message        string  `json:"message"`
	UserID         string  `json:"user_id"`
	ConversationID *string `json:"conversation_id"`
}

type chatResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UpdatedScore   *int   `json:"updated_score,omitempty"`
	UpdatedNotes   string `json:"updated_notes,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	h.mu.Lock()
	h.turns[req.UserID]++
	turn := h.turns[req.UserID]
	// One point per turn plus a small length bonus, accumulated per user.
	// The client treats this as the new absolute value.
	h.scores[req.UserID] += 1 + len(req.Message)/32
	score := h.scores[req.UserID]
	h.mu.Unlock()

	resp := chatResponse{
		Message:      replies[(turn-1)%len(replies)],
		UpdatedScore: &score,
	}
	if req.ConversationID == nil || *req.ConversationID == "" {
		resp.ConversationID = uuid.NewString()
	} else {
		resp.ConversationID = *req.ConversationID
	}
	if turn%3 == 0 {
		resp.UpdatedNotes = "The deep has heard " + strconv.Itoa(turn) + " utterances."
	}

	h.logger.Info("chat turn served", "user_id", req.UserID, "turn", turn, "score", score)
	JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	if r.FormValue("user_id") == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Debug("failed to close uploaded file", "error", closeErr)
		}
	}()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	fileID := uuid.NewString()
	h.mu.Lock()
	h.fileSizes[fileID] = size
	h.filenames[fileID] = header.Filename
	h.mu.Unlock()

	h.logger.Info("file uploaded", "file_id", fileID, "filename", header.Filename, "size", size)
	JSON(w, http.StatusOK, map[string]string{
		"filename": header.Filename,
		"file_id":  fileID,
	})
}

func (h *Handler) handleFileScore(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")

	h.mu.Lock()
	size, ok := h.fileSizes[fileID]
	h.mu.Unlock()
	if !ok {
		Error(w, http.StatusNotFound, "unknown file")
		return
	}

	// Arbitrary but deterministic: a bonus between 1 and 5 from the size.
	score := int(size%5) + 1
	JSON(w, http.StatusOK, map[string]int{"score": score})
}
