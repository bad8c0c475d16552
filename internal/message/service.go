// Package message implements the message-creation pipeline: a submitted
// draft is validated, permission-checked, deduplicated by nonce, linked to
// its attachments, persisted and broadcast, with every failure before the
// persist undoing any attachment it already claimed.
package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumochat/lumo/internal/attachment"
	"github.com/lumochat/lumo/internal/channel"
	"github.com/lumochat/lumo/internal/db"
	"github.com/lumochat/lumo/internal/db/sqlc"
	"github.com/lumochat/lumo/internal/ids"
	"github.com/lumochat/lumo/internal/mention"
	"github.com/lumochat/lumo/internal/message/event"
	"github.com/lumochat/lumo/internal/permissions"
)

// nonceConstraint is the unique index that makes nonce dedup race-safe. The
// existence pre-check in Create is only a fast path; this constraint is the
// authoritative guarantee.
const nonceConstraint = "messages_nonce_key"

const uniqueViolationCode = "23505"

const releaseTimeout = 10 * time.Second

var validate = validator.New()

// AttachmentStore claims and releases uploads on behalf of a message.
type AttachmentStore interface {
	FindAndUse(ctx context.Context, attachmentID, tag, ownerKind, ownerID string) (attachment.Attachment, error)
	Release(ctx context.Context, attachmentID, ownerID string) error
}

// ChannelResolver resolves the target channel of a submission.
type ChannelResolver interface {
	Get(ctx context.Context, channelID string) (channel.Channel, error)
}

// Service runs the message-creation pipeline and reads message history.
type Service struct {
	queries        *sqlc.Queries
	channels       ChannelResolver
	store          AttachmentStore
	perms          *permissions.Calculator
	publisher      event.Publisher
	logger         *slog.Logger
	maxAttachments int
}

// NewService creates a message service. maxAttachments caps how many uploads
// one message may bind.
func NewService(log *slog.Logger, queries *sqlc.Queries, channels ChannelResolver, store AttachmentStore, perms *permissions.Calculator, maxAttachments int, publishers ...event.Publisher) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxAttachments <= 0 {
		maxAttachments = 4
	}
	var publisher event.Publisher
	if len(publishers) > 0 {
		publisher = publishers[0]
	}
	return &Service{
		queries:        queries,
		channels:       channels,
		store:          store,
		perms:          perms,
		publisher:      publisher,
		logger:         log.With(slog.String("service", "message")),
		maxAttachments: maxAttachments,
	}
}

// Create runs one submission through the pipeline. On success the returned
// Message is durably stored and has been offered to all current subscribers
// of the channel; a failed broadcast is logged but does not fail the call.
func (s *Service) Create(ctx context.Context, authorID, channelID string, draft Draft) (Message, error) {
	if err := validate.Struct(draft); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrFailedValidation, err)
	}
	if draft.Content == "" && len(draft.Attachments) == 0 {
		return Message{}, ErrEmptyMessage
	}

	ch, err := s.channels.Get(ctx, channelID)
	if err != nil {
		return Message{}, err
	}
	if !s.perms.For(authorID, ch).Can(permissions.SendMessage) {
		return Message{}, ErrMissingPermission
	}

	// Fast path only. Two submissions racing past this check are still
	// serialized by the unique index at insert time.
	exists, err := s.queries.MessageNonceExists(ctx, db.ToText(draft.Nonce))
	if err != nil {
		return Message{}, fmt.Errorf("%w: check nonce: %v", ErrPersistence, err)
	}
	if exists {
		return Message{}, ErrDuplicateNonce
	}

	messageID := ids.New()

	var bound []attachment.Attachment
	if len(draft.Attachments) > 0 {
		if len(draft.Attachments) > s.maxAttachments {
			return Message{}, ErrTooManyAttachments
		}
		bound, err = s.linkAttachments(ctx, draft.Attachments, messageID)
		if err != nil {
			return Message{}, err
		}
	}

	msg := Message{
		ID:          messageID,
		ChannelID:   ch.ID,
		AuthorID:    authorID,
		Content:     draft.Content,
		Attachments: bound,
		Nonce:       draft.Nonce,
		Mentions:    mention.Extract(draft.Content),
	}

	// pgx encodes a nil slice as SQL NULL, which the NOT NULL mentions
	// column rejects. Mention-free messages store an empty array instead.
	mentions := msg.Mentions
	if mentions == nil {
		mentions = []string{}
	}

	row, err := s.queries.InsertMessage(ctx, sqlc.InsertMessageParams{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		AuthorID:  msg.AuthorID,
		Content:   msg.Content,
		Nonce:     db.ToText(msg.Nonce),
		Mentions:  mentions,
	})
	if err != nil {
		s.releaseAll(bound, messageID)
		if isNonceConflict(err) {
			return Message{}, ErrDuplicateNonce
		}
		return Message{}, fmt.Errorf("%w: insert message: %v", ErrPersistence, err)
	}
	msg.CreatedAt = row.CreatedAt.Time

	s.publishCreated(msg)
	return msg, nil
}

// linkAttachments claims each referenced upload for messageID. On any
// failure it releases the claims it already made, so an aborted submission
// never leaves an upload bound to a message that does not exist.
func (s *Service) linkAttachments(ctx context.Context, refs []string, messageID string) ([]attachment.Attachment, error) {
	bound := make([]attachment.Attachment, 0, len(refs))
	for _, ref := range refs {
		att, err := s.store.FindAndUse(ctx, ref, attachment.TagAttachments, attachment.OwnerKindMessage, messageID)
		if err != nil {
			s.releaseAll(bound, messageID)
			if errors.Is(err, attachment.ErrAttachmentNotFound) || errors.Is(err, attachment.ErrAlreadyBound) {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAttachment, ref, err)
			}
			return nil, fmt.Errorf("%w: bind %s: %v", ErrPersistence, ref, err)
		}
		bound = append(bound, att)
	}
	return bound, nil
}

// releaseAll is the compensating action for linkAttachments. It runs on a
// fresh context so a canceled request still frees its claims.
func (s *Service) releaseAll(bound []attachment.Attachment, messageID string) {
	if len(bound) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	for _, att := range bound {
		if err := s.store.Release(ctx, att.ID, messageID); err != nil {
			s.logger.Error("release attachment failed",
				slog.String("attachment_id", att.ID),
				slog.String("message_id", messageID),
				slog.Any("error", err))
		}
	}
}

func isNonceConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolationCode &&
		pgErr.ConstraintName == nonceConstraint
}

// publishCreated broadcasts the stored message. The message already exists
// by now, so failures degrade to a log line instead of failing the call.
func (s *Service) publishCreated(msg Message) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("marshal message event failed", slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(event.Event{
		Type:      event.TypeMessageCreated,
		ChannelID: msg.ChannelID,
		Data:      payload,
	}); err != nil {
		s.logger.Warn("broadcast message failed",
			slog.String("message_id", msg.ID),
			slog.Any("error", err))
	}
}

// Get returns one message with its attachments.
func (s *Service) Get(ctx context.Context, messageID string) (Message, error) {
	row, err := s.queries.GetMessage(ctx, messageID)
	if err != nil {
		return Message{}, fmt.Errorf("get message: %w", err)
	}
	msgs := []Message{convertMessage(row)}
	s.enrichAttachments(ctx, msgs)
	return msgs[0], nil
}

// ListLatest returns the newest messages of a channel, oldest first.
func (s *Service) ListLatest(ctx context.Context, channelID string, limit int32) ([]Message, error) {
	rows, err := s.queries.ListMessagesLatest(ctx, sqlc.ListMessagesLatestParams{
		ChannelID: channelID,
		MaxCount:  limit,
	})
	if err != nil {
		return nil, err
	}
	msgs := convertMessages(rows)
	reverseMessages(msgs)
	s.enrichAttachments(ctx, msgs)
	return msgs, nil
}

// ListBefore returns up to limit messages older than the given message id,
// oldest first. Message ids sort by creation time, so id-based paging is
// stable under concurrent inserts.
func (s *Service) ListBefore(ctx context.Context, channelID, beforeID string, limit int32) ([]Message, error) {
	rows, err := s.queries.ListMessagesBefore(ctx, sqlc.ListMessagesBeforeParams{
		ChannelID: channelID,
		ID:        beforeID,
		MaxCount:  limit,
	})
	if err != nil {
		return nil, err
	}
	msgs := convertMessages(rows)
	reverseMessages(msgs)
	s.enrichAttachments(ctx, msgs)
	return msgs, nil
}

// enrichAttachments batch-loads bound uploads for a list of messages.
func (s *Service) enrichAttachments(ctx context.Context, msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	idList := make([]string, 0, len(msgs))
	for _, m := range msgs {
		idList = append(idList, m.ID)
	}
	rows, err := s.queries.ListBoundAttachments(ctx, sqlc.ListBoundAttachmentsParams{
		OwnerKind: db.ToText(attachment.OwnerKindMessage),
		OwnerIds:  idList,
	})
	if err != nil {
		s.logger.Warn("enrich attachments failed", slog.Any("error", err))
		return
	}
	byMessage := map[string][]attachment.Attachment{}
	for _, row := range rows {
		ownerID := db.TextToString(row.OwnerID)
		byMessage[ownerID] = append(byMessage[ownerID], attachment.Attachment{
			ID:          row.ID,
			Tag:         row.Tag,
			Filename:    row.Filename,
			ContentType: row.ContentType,
			SizeBytes:   row.SizeBytes,
			ContentHash: row.ContentHash,
			StorageKey:  row.StorageKey,
			UploaderID:  row.UploaderID,
			OwnerKind:   db.TextToString(row.OwnerKind),
			OwnerID:     ownerID,
			BoundAt:     row.BoundAt.Time,
			CreatedAt:   row.CreatedAt.Time,
		})
	}
	for i := range msgs {
		if atts, ok := byMessage[msgs[i].ID]; ok {
			msgs[i].Attachments = atts
		}
	}
}

func convertMessage(row sqlc.Message) Message {
	return Message{
		ID:        row.ID,
		ChannelID: row.ChannelID,
		AuthorID:  row.AuthorID,
		Content:   row.Content,
		Nonce:     db.TextToString(row.Nonce),
		Mentions:  row.Mentions,
		CreatedAt: row.CreatedAt.Time,
	}
}

func convertMessages(rows []sqlc.Message) []Message {
	msgs := make([]Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, convertMessage(row))
	}
	return msgs
}

func reverseMessages(m []Message) {
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
}
