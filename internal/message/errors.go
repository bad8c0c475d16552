package message

import "errors"

var (
	// ErrFailedValidation indicates a malformed draft.
	ErrFailedValidation = errors.New("failed validation")
	// ErrEmptyMessage indicates a draft with no content and no attachments.
	ErrEmptyMessage = errors.New("empty message")
	// ErrTooManyAttachments indicates the draft exceeds the attachment cap.
	ErrTooManyAttachments = errors.New("too many attachments")
	// ErrInvalidAttachment indicates an unresolvable or already-bound reference.
	ErrInvalidAttachment = errors.New("invalid attachment")
	// ErrMissingPermission indicates the author may not send to the channel.
	ErrMissingPermission = errors.New("missing permission")
	// ErrDuplicateNonce indicates the idempotency token was already used.
	// Permanent: the caller must resubmit with a fresh nonce.
	ErrDuplicateNonce = errors.New("duplicate nonce")
	// ErrPersistence indicates storage failed for a reason other than a
	// nonce conflict.
	ErrPersistence = errors.New("persistence failure")
)
