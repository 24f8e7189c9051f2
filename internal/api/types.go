// Package api provides the HTTP client for the remote chat and scoring
// service. Response payloads are validated at this boundary; optional fields
// are represented as pointers so "absent" and "zero" stay distinguishable.
package api

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string  `json:"message"`
	UserID         string  `json:"user_id"`
	ConversationID *string `json:"conversation_id"`
}

// ChatResponse is the body of a successful POST /api/chat. Absent optional
// fields mean "no change".
type ChatResponse struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id,omitempty"`
	UpdatedScore   *int    `json:"updated_score,omitempty"`
	UpdatedNotes   *string `json:"updated_notes,omitempty"`
}

// UploadResponse is the body of a successful POST /upload.
type UploadResponse struct {
	Filename string `json:"filename"`
	FileID   string `json:"file_id"`
}

// fileScoreResponse is the body of GET /get_file_score/{file_id}.
type fileScoreResponse struct {
	Score *int   `json:"score,omitempty"`
	Error string `json:"error,omitempty"`
}

// errorResponse is the error body shape shared by all endpoints.
type errorResponse struct {
	Error string `json:"error"`
}
