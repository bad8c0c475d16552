package channel

import "time"

// Kind discriminates channel behavior, in particular who may read and send.
type Kind string

const (
	// KindSavedMessages is a private notes channel visible only to its owner.
	KindSavedMessages Kind = "saved_messages"
	// KindDirectMessage is a two-party conversation.
	KindDirectMessage Kind = "direct_message"
	// KindGroup is a multi-party conversation managed by its owner.
	KindGroup Kind = "group"
)

// Channel is the domain representation of a conversation container.
type Channel struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasRecipient reports whether userID participates in the channel.
func (c Channel) HasRecipient(userID string) bool {
	for _, id := range c.Recipients {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateInput carries the data needed to create a channel.
type CreateInput struct {
	Kind       Kind
	OwnerID    string
	Name       string
	Recipients []string
}
