package domain

// Identity is the anonymous per-device token identifying a user to the
// remote service. Once assigned it is immutable for the session.
type Identity struct {
	ID        string
	Generated bool // true if synthesized this session rather than loaded
}

// Valid reports whether the identity carries a usable identifier.
func (i Identity) Valid() bool {
	return i.ID != ""
}
