package session

import (
	"context"
	"io"

	"github.com/rlyeh-labs/cthulhu-chat/internal/domain"
)

// UploadFile submits a file tied to the identity, then fetches the score the
// server derived from it and merges it as an additive contribution. Failure
// at either stage is logged and the upload record discarded; the first stage
// is not rolled back. Uploads never toggle the waiting flag.
func (s *Session) UploadFile(ctx context.Context, filename string, content io.Reader) {
	if filename == "" || content == nil {
		return
	}

	s.mu.Lock()
	if !s.identity.Valid() {
		s.mu.Unlock()
		return
	}
	userID := s.identity.ID
	s.mu.Unlock()

	up, err := s.remote.UploadFile(ctx, userID, filename, content)
	if err != nil {
		s.logger.Warn("file upload failed", "user_id", userID, "filename", filename, "error", err)
		return
	}

	record := domain.UploadedFileRecord{Filename: up.Filename, FileID: up.FileID}
	s.mu.Lock()
	s.lastUpload = &record
	s.mu.Unlock()

	delta, err := s.remote.FileScore(ctx, up.FileID)
	if err != nil {
		s.logger.Warn("file score fetch failed", "user_id", userID, "file_id", up.FileID, "error", err)
		s.discardUpload(up.FileID)
		return
	}

	s.applyFileScore(ctx, delta)
}

// LastUpload returns the record of the most recent completed upload, or nil.
func (s *Session) LastUpload() *domain.UploadedFileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpload == nil {
		return nil
	}
	record := *s.lastUpload
	return &record
}

// discardUpload drops the upload record unless a newer upload superseded it.
func (s *Session) discardUpload(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpload != nil && s.lastUpload.FileID == fileID {
		s.lastUpload = nil
	}
}
