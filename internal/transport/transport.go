// Package transport defines the messaging-side contract the bot core
// consumes, keeping the core independent of the concrete chat service.
package transport

// Transport is the inbound/outbound messaging boundary.
type Transport interface {
	// GetUpdates returns inbound updates starting at offset, long-polling
	// for up to timeout seconds.
	GetUpdates(offset int64, timeout int) ([]Update, error)
	// SendMessage delivers text to the given conversation. Fire-and-forget
	// from the core's perspective.
	SendMessage(chatID int64, text string) error
}

// Update is one inbound event from the messaging service.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	Chat Chat    `json:"chat"`
	Text *string `json:"text,omitempty"`
	Date int64   `json:"date"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}
