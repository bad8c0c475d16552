package attachment

import "errors"

var (
	// ErrAttachmentNotFound indicates the referenced upload does not exist.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrAlreadyBound indicates the upload already belongs to another owner.
	ErrAlreadyBound = errors.New("attachment already bound")
	// ErrAttachmentTooLarge indicates the payload exceeds the configured max size.
	ErrAttachmentTooLarge = errors.New("attachment too large")
	// ErrProviderUnavailable indicates the storage provider is not configured.
	ErrProviderUnavailable = errors.New("storage provider unavailable")
	// ErrPathTraversal indicates a storage key attempted directory traversal.
	ErrPathTraversal = errors.New("path traversal is forbidden")
)
