package message

import (
	"time"

	"github.com/lumochat/lumo/internal/attachment"
)

// Draft is a client-submitted message payload. The nonce is the client's
// idempotency token: resubmitting the same draft after a lost response cannot
// create a second message. Attachments reference uploads made beforehand.
type Draft struct {
	Content     string   `json:"content" validate:"max=2000"`
	Nonce       string   `json:"nonce" validate:"required,min=1,max=36"`
	Attachments []string `json:"attachments" validate:"omitempty,min=1,max=128"`
}

// Message is a persisted chat message. Immutable once created.
type Message struct {
	ID          string                  `json:"id"`
	ChannelID   string                  `json:"channel_id"`
	AuthorID    string                  `json:"author_id"`
	Content     string                  `json:"content"`
	Attachments []attachment.Attachment `json:"attachments,omitempty"`
	Nonce       string                  `json:"nonce,omitempty"`
	Mentions    []string                `json:"mentions,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}
