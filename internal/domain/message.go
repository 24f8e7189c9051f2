// Package domain contains core domain types for the Cthulhu Chat client.
package domain

// Sender identifies the origin of a chat message.
type Sender string

const (
	SenderUser   Sender = "User"
	SenderBot    Sender = "Cthulhu"
	SenderSystem Sender = "System"
)

// Message is a single chat turn. Messages are appended, never mutated or
// removed, except when the whole conversation is reset.
type Message struct {
	Sender   Sender `json:"sender"`
	Text     string `json:"text"`
	Sequence int    `json:"sequence"`
}

// Conversation is a bounded sequence of chat turns sharing one
// server-assigned identifier. ID is empty until the server assigns one.
type Conversation struct {
	ID       string
	Messages []Message
}

// Append adds a message with the next sequence index and returns it.
func (c *Conversation) Append(sender Sender, text string) Message {
	msg := Message{
		Sender:   sender,
		Text:     text,
		Sequence: len(c.Messages),
	}
	c.Messages = append(c.Messages, msg)
	return msg
}
