package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lumochat/lumo/internal/db"
	"github.com/lumochat/lumo/internal/db/sqlc"
	"github.com/lumochat/lumo/internal/ids"
)

// ErrChannelNotFound indicates the requested channel does not exist.
var ErrChannelNotFound = errors.New("channel not found")

// Service provides channel persistence operations.
type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

// NewService creates a channel service.
func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "channel")),
	}
}

// Get resolves a channel by id.
func (s *Service) Get(ctx context.Context, channelID string) (Channel, error) {
	row, err := s.queries.GetChannel(ctx, strings.TrimSpace(channelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Channel{}, ErrChannelNotFound
		}
		return Channel{}, fmt.Errorf("get channel: %w", err)
	}
	return convertChannel(row), nil
}

// Create creates a channel. The owner is always included in the recipient
// list for direct and group channels.
func (s *Service) Create(ctx context.Context, input CreateInput) (Channel, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return Channel{}, fmt.Errorf("owner id is required")
	}
	kind, err := normalizeKind(input.Kind)
	if err != nil {
		return Channel{}, err
	}

	recipients := dedupeRecipients(input.Recipients)
	switch kind {
	case KindSavedMessages:
		// Empty rather than nil: a nil slice encodes as SQL NULL, which the
		// NOT NULL recipients column rejects.
		recipients = []string{}
	case KindDirectMessage, KindGroup:
		if !contains(recipients, ownerID) {
			recipients = append([]string{ownerID}, recipients...)
		}
		if kind == KindDirectMessage && len(recipients) != 2 {
			return Channel{}, fmt.Errorf("direct message channel requires exactly two recipients")
		}
	}

	row, err := s.queries.CreateChannel(ctx, sqlc.CreateChannelParams{
		ID:         ids.New(),
		Kind:       string(kind),
		OwnerID:    ownerID,
		Name:       db.ToText(input.Name),
		Recipients: recipients,
	})
	if err != nil {
		return Channel{}, fmt.Errorf("create channel: %w", err)
	}
	s.logger.Info("channel created", slog.String("channel_id", row.ID), slog.String("kind", row.Kind))
	return convertChannel(row), nil
}

func normalizeKind(kind Kind) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case KindSavedMessages:
		return KindSavedMessages, nil
	case KindDirectMessage:
		return KindDirectMessage, nil
	case KindGroup, "":
		return KindGroup, nil
	default:
		return "", fmt.Errorf("unknown channel kind %q", kind)
	}
}

func dedupeRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	result := make([]string, 0, len(recipients))
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		result = append(result, r)
	}
	return result
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func convertChannel(row sqlc.Channel) Channel {
	return Channel{
		ID:         row.ID,
		Kind:       Kind(row.Kind),
		OwnerID:    row.OwnerID,
		Name:       db.TextToString(row.Name),
		Recipients: row.Recipients,
		CreatedAt:  row.CreatedAt.Time,
	}
}
