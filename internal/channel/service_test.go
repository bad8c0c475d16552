package channel

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lumochat/lumo/internal/db/sqlc"
	"github.com/lumochat/lumo/internal/ids"
)

// fakeRow implements pgx.Row with a custom scan function.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// fakeDBTX implements sqlc.DBTX for unit testing.
type fakeDBTX struct {
	queryRowFunc func(sql string, args ...any) pgx.Row
}

func (d *fakeDBTX) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDBTX) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (d *fakeDBTX) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if d.queryRowFunc != nil {
		return d.queryRowFunc(sql, args...)
	}
	return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

// echoChannelDB answers CreateChannel by echoing the insert arguments back.
func echoChannelDB(captured *sqlc.CreateChannelParams) *fakeDBTX {
	return &fakeDBTX{queryRowFunc: func(sql string, args ...any) pgx.Row {
		if !strings.Contains(sql, "CreateChannel") {
			return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
		}
		*captured = sqlc.CreateChannelParams{
			ID:         args[0].(string),
			Kind:       args[1].(string),
			OwnerID:    args[2].(string),
			Name:       args[3].(pgtype.Text),
			Recipients: args[4].([]string),
		}
		return &fakeRow{scanFunc: func(dest ...any) error {
			*dest[0].(*string) = captured.ID
			*dest[1].(*string) = captured.Kind
			*dest[2].(*string) = captured.OwnerID
			*dest[3].(*pgtype.Text) = captured.Name
			*dest[4].(*[]string) = captured.Recipients
			*dest[5].(*pgtype.Timestamptz) = pgtype.Timestamptz{Valid: true}
			return nil
		}}
	}}
}

func TestGetMissingChannel(t *testing.T) {
	svc := NewService(nil, sqlc.New(&fakeDBTX{}))

	_, err := svc.Get(context.Background(), "01BX5ZZKBKACTAV9WEVGEMMVRY")
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("Get error = %v, want ErrChannelNotFound", err)
	}
}

func TestCreateGroupIncludesOwnerAndDedupes(t *testing.T) {
	var captured sqlc.CreateChannelParams
	svc := NewService(nil, sqlc.New(echoChannelDB(&captured)))

	ch, err := svc.Create(context.Background(), CreateInput{
		Kind:       KindGroup,
		OwnerID:    "u1",
		Name:       "plans",
		Recipients: []string{"u2", " u2 ", "u3", ""},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !ids.Valid(ch.ID) {
		t.Fatalf("channel id %q is not a ULID", ch.ID)
	}
	want := []string{"u1", "u2", "u3"}
	if !reflect.DeepEqual(ch.Recipients, want) {
		t.Fatalf("recipients = %v, want %v", ch.Recipients, want)
	}
	if ch.Name != "plans" || ch.Kind != KindGroup {
		t.Fatalf("channel = %+v", ch)
	}
}

func TestCreateSavedMessagesDropsRecipients(t *testing.T) {
	var captured sqlc.CreateChannelParams
	svc := NewService(nil, sqlc.New(echoChannelDB(&captured)))

	ch, err := svc.Create(context.Background(), CreateInput{
		Kind:       KindSavedMessages,
		OwnerID:    "u1",
		Recipients: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(ch.Recipients) != 0 {
		t.Fatalf("recipients = %v, want none", ch.Recipients)
	}
	// A nil slice would encode as SQL NULL and violate the NOT NULL
	// recipients column.
	if captured.Recipients == nil {
		t.Fatal("CreateChannel received nil recipients")
	}
}

func TestCreateDirectMessageRequiresTwoParties(t *testing.T) {
	var captured sqlc.CreateChannelParams
	svc := NewService(nil, sqlc.New(echoChannelDB(&captured)))

	if _, err := svc.Create(context.Background(), CreateInput{
		Kind:    KindDirectMessage,
		OwnerID: "u1",
	}); err == nil {
		t.Fatal("expected error for direct message without a second party")
	}

	ch, err := svc.Create(context.Background(), CreateInput{
		Kind:       KindDirectMessage,
		OwnerID:    "u1",
		Recipients: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !reflect.DeepEqual(ch.Recipients, []string{"u1", "u2"}) {
		t.Fatalf("recipients = %v, want [u1 u2]", ch.Recipients)
	}
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	svc := NewService(nil, sqlc.New(&fakeDBTX{}))

	if _, err := svc.Create(context.Background(), CreateInput{Kind: "voice", OwnerID: "u1"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := svc.Create(context.Background(), CreateInput{Kind: KindGroup}); err == nil {
		t.Fatal("expected error for missing owner")
	}
}
