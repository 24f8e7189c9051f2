package domain

// ScoreState is the cumulative reputation tied to an identity. Value never
// decreases except through an explicit reset, and only the session's
// reconciler may write it.
type ScoreState struct {
	Value int
	Notes string
}

// UploadedFileRecord correlates an upload response with the follow-up score
// fetch. It is ephemeral and superseded by the next upload.
type UploadedFileRecord struct {
	Filename string
	FileID   string
}
