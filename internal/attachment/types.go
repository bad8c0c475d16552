package attachment

import (
	"context"
	"io"
	"time"
)

// TagAttachments is the upload bucket messages bind from.
const TagAttachments = "attachments"

// OwnerKindMessage marks an upload as bound to a message.
const OwnerKindMessage = "message"

// Attachment is the domain representation of an uploaded object. OwnerID is
// empty until the object is bound to exactly one owner.
type Attachment struct {
	ID          string    `json:"id"`
	Tag         string    `json:"tag"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentHash string    `json:"content_hash"`
	StorageKey  string    `json:"-"`
	UploaderID  string    `json:"uploader_id"`
	OwnerKind   string    `json:"owner_kind,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	BoundAt     time.Time `json:"bound_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}

// Bound reports whether the attachment already belongs to an owner.
func (a Attachment) Bound() bool {
	return a.OwnerID != ""
}

// IngestInput carries the data needed to persist a new upload.
type IngestInput struct {
	UploaderID  string
	Filename    string
	ContentType string
	// Reader provides the raw bytes; caller is responsible for closing.
	Reader io.Reader
	// MaxBytes optionally overrides the configured size limit.
	MaxBytes int64
}

// StorageProvider abstracts object storage operations.
type StorageProvider interface {
	// Put writes data to storage under the given key.
	Put(ctx context.Context, key string, reader io.Reader) error
	// Open returns a reader for the given storage key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}
