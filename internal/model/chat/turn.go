package chat

import "time"

// Speaker identifies the author of a turn.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// PendingPlaceholder is the text a model turn carries before the first chunk lands.
const PendingPlaceholder = "…"

// Turn is a single message in the conversation. A model turn may transiently
// carry Pending=true while its text is still being reconciled from the stream;
// once finalized it is never mutated again.
type Turn struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Pending   bool      `json:"pending,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
