// Package attachment stores uploaded objects and their binding state.
// Uploads arrive independently of message creation; a message later claims
// them through FindAndUse, which flips the upload from unbound to bound
// exactly once.
package attachment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lumochat/lumo/internal/db"
	"github.com/lumochat/lumo/internal/db/sqlc"
	"github.com/lumochat/lumo/internal/ids"
)

const reapBatchSize = 200

// Service provides attachment persistence and binding operations.
type Service struct {
	queries  *sqlc.Queries
	provider StorageProvider
	logger   *slog.Logger
	maxBytes int64
}

// NewService creates an attachment service with the given storage provider.
func NewService(log *slog.Logger, queries *sqlc.Queries, provider StorageProvider, maxBytes int64) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 20 * 1024 * 1024
	}
	return &Service{
		queries:  queries,
		provider: provider,
		logger:   log.With(slog.String("service", "attachment")),
		maxBytes: maxBytes,
	}
}

// Ingest persists a new upload in the unbound state. It hashes the content,
// stores the bytes via the provider, and writes the DB record.
func (s *Service) Ingest(ctx context.Context, input IngestInput) (Attachment, error) {
	if s.provider == nil {
		return Attachment{}, ErrProviderUnavailable
	}
	if strings.TrimSpace(input.UploaderID) == "" {
		return Attachment{}, fmt.Errorf("uploader id is required")
	}
	if input.Reader == nil {
		return Attachment{}, fmt.Errorf("reader is required")
	}

	maxBytes := input.MaxBytes
	if maxBytes <= 0 {
		maxBytes = s.maxBytes
	}
	data, err := ReadAllWithLimit(input.Reader, maxBytes)
	if err != nil {
		return Attachment{}, fmt.Errorf("read upload: %w", err)
	}

	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])
	storageKey := path.Join(TagAttachments, contentHash[:4], contentHash)

	if err := s.provider.Put(ctx, storageKey, bytes.NewReader(data)); err != nil {
		return Attachment{}, fmt.Errorf("store upload: %w", err)
	}

	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		filename = "unnamed"
	}
	row, err := s.queries.CreateAttachment(ctx, sqlc.CreateAttachmentParams{
		ID:          ids.New(),
		Tag:         TagAttachments,
		Filename:    filename,
		ContentType: coalesce(input.ContentType, "application/octet-stream"),
		SizeBytes:   int64(len(data)),
		ContentHash: contentHash,
		StorageKey:  storageKey,
		UploaderID:  strings.TrimSpace(input.UploaderID),
	})
	if err != nil {
		return Attachment{}, fmt.Errorf("create attachment record: %w", err)
	}
	return convertAttachment(row), nil
}

// Get returns the attachment record by id.
func (s *Service) Get(ctx context.Context, attachmentID string) (Attachment, error) {
	row, err := s.queries.GetAttachment(ctx, strings.TrimSpace(attachmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attachment{}, ErrAttachmentNotFound
		}
		return Attachment{}, fmt.Errorf("get attachment: %w", err)
	}
	return convertAttachment(row), nil
}

// Open returns a reader for the attachment's stored bytes.
func (s *Service) Open(ctx context.Context, attachmentID string) (io.ReadCloser, Attachment, error) {
	if s.provider == nil {
		return nil, Attachment{}, ErrProviderUnavailable
	}
	att, err := s.Get(ctx, attachmentID)
	if err != nil {
		return nil, Attachment{}, err
	}
	reader, err := s.provider.Open(ctx, att.StorageKey)
	if err != nil {
		return nil, Attachment{}, fmt.Errorf("open storage: %w", err)
	}
	return reader, att, nil
}

// FindAndUse atomically claims the upload for the given owner. The bind is a
// single compare-and-set against the unbound state, so two concurrent claims
// of the same upload cannot both succeed. Returns ErrAttachmentNotFound when
// the reference does not resolve and ErrAlreadyBound when another owner got
// there first.
func (s *Service) FindAndUse(ctx context.Context, attachmentID, tag, ownerKind, ownerID string) (Attachment, error) {
	row, err := s.queries.BindAttachment(ctx, sqlc.BindAttachmentParams{
		ID:        strings.TrimSpace(attachmentID),
		Tag:       tag,
		OwnerKind: db.ToText(ownerKind),
		OwnerID:   db.ToText(ownerID),
	})
	if err == nil {
		return convertAttachment(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Attachment{}, fmt.Errorf("bind attachment: %w", err)
	}
	// The CAS matched nothing: distinguish a missing upload from a lost race.
	if _, getErr := s.queries.GetAttachment(ctx, strings.TrimSpace(attachmentID)); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return Attachment{}, ErrAttachmentNotFound
		}
		return Attachment{}, fmt.Errorf("resolve attachment: %w", getErr)
	}
	return Attachment{}, ErrAlreadyBound
}

// Release is the compensating action for FindAndUse: it returns the upload to
// the unbound state, but only while ownerID still owns it.
func (s *Service) Release(ctx context.Context, attachmentID, ownerID string) error {
	affected, err := s.queries.UnbindAttachment(ctx, sqlc.UnbindAttachmentParams{
		ID:      strings.TrimSpace(attachmentID),
		OwnerID: db.ToText(ownerID),
	})
	if err != nil {
		return fmt.Errorf("unbind attachment: %w", err)
	}
	if affected == 0 {
		s.logger.Warn("release found no binding to undo",
			slog.String("attachment_id", attachmentID),
			slog.String("owner_id", ownerID))
	}
	return nil
}

// ReapStale deletes unbound uploads older than the retention window,
// removing both the DB record and the stored bytes. Returns how many uploads
// were reaped.
func (s *Service) ReapStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	reaped := 0
	for {
		rows, err := s.queries.ListStaleUnboundAttachments(ctx, sqlc.ListStaleUnboundAttachmentsParams{
			CreatedAt: pgtype.Timestamptz{Time: cutoff, Valid: true},
			MaxCount:  reapBatchSize,
		})
		if err != nil {
			return reaped, fmt.Errorf("list stale attachments: %w", err)
		}
		if len(rows) == 0 {
			return reaped, nil
		}
		for _, row := range rows {
			// Delete guards on owner_id IS NULL, so an upload bound between
			// the list and the delete survives.
			affected, err := s.queries.DeleteAttachment(ctx, row.ID)
			if err != nil {
				return reaped, fmt.Errorf("delete attachment %s: %w", row.ID, err)
			}
			if affected == 0 {
				continue
			}
			if s.provider != nil {
				if err := s.provider.Delete(ctx, row.StorageKey); err != nil {
					s.logger.Warn("delete stored bytes failed",
						slog.String("attachment_id", row.ID),
						slog.Any("error", err))
				}
			}
			reaped++
		}
		if len(rows) < reapBatchSize {
			return reaped, nil
		}
	}
}

func coalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func convertAttachment(row sqlc.Attachment) Attachment {
	return Attachment{
		ID:          row.ID,
		Tag:         row.Tag,
		Filename:    row.Filename,
		ContentType: row.ContentType,
		SizeBytes:   row.SizeBytes,
		ContentHash: row.ContentHash,
		StorageKey:  row.StorageKey,
		UploaderID:  row.UploaderID,
		OwnerKind:   db.TextToString(row.OwnerKind),
		OwnerID:     db.TextToString(row.OwnerID),
		BoundAt:     row.BoundAt.Time,
		CreatedAt:   row.CreatedAt.Time,
	}
}
