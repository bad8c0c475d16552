package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

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

func makeUserRow(id, username, passwordHash string) *fakeRow {
	return &fakeRow{scanFunc: func(dest ...any) error {
		if len(dest) < 4 {
			return pgx.ErrNoRows
		}
		*dest[0].(*string) = id
		*dest[1].(*string) = username
		*dest[2].(*string) = passwordHash
		*dest[3].(*pgtype.Timestamptz) = pgtype.Timestamptz{Valid: true}
		return nil
	}}
}

func TestRegister(t *testing.T) {
	var createdHash string
	dbtx := &fakeDBTX{queryRowFunc: func(sql string, args ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "GetUserByUsername"):
			return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
		case strings.Contains(sql, "CreateUser"):
			createdHash = args[2].(string)
			return makeUserRow(args[0].(string), args[1].(string), createdHash)
		default:
			return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
		}
	}}
	svc := NewService(nil, sqlc.New(dbtx))

	user, err := svc.Register(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !ids.Valid(user.ID) {
		t.Fatalf("user id %q is not a ULID", user.ID)
	}
	if user.Username != "alice" {
		t.Fatalf("username = %q", user.Username)
	}
	if createdHash == "correct horse" {
		t.Fatal("password stored in the clear")
	}
	if bcrypt.CompareHashAndPassword([]byte(createdHash), []byte("correct horse")) != nil {
		t.Fatal("stored hash does not verify the password")
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := NewService(nil, sqlc.New(&fakeDBTX{}))

	if _, err := svc.Register(context.Background(), "  ", "correct horse"); err == nil {
		t.Fatal("expected error for blank username")
	}
	if _, err := svc.Register(context.Background(), "alice", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestRegisterTakenUsername(t *testing.T) {
	dbtx := &fakeDBTX{queryRowFunc: func(sql string, args ...any) pgx.Row {
		return makeUserRow("01BX5ZZKBKACTAV9WEVGEMMVR1", "alice", "hash")
	}}
	svc := NewService(nil, sqlc.New(dbtx))

	_, err := svc.Register(context.Background(), "alice", "correct horse")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("Register error = %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterLostRaceOnUsername(t *testing.T) {
	// The pre-read misses but a concurrent registration wins at insert time;
	// the unique constraint violation must still read as a taken username.
	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	dbtx := &fakeDBTX{queryRowFunc: func(sql string, args ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "GetUserByUsername"):
			return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
		case strings.Contains(sql, "CreateUser"):
			return &fakeRow{scanFunc: func(dest ...any) error { return conflict }}
		default:
			return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
		}
	}}
	svc := NewService(nil, sqlc.New(dbtx))

	_, err := svc.Register(context.Background(), "alice", "correct horse")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("Register error = %v, want ErrUsernameTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	dbtx := &fakeDBTX{queryRowFunc: func(sql string, args ...any) pgx.Row {
		if args[0].(string) == "alice" {
			return makeUserRow("01BX5ZZKBKACTAV9WEVGEMMVR1", "alice", string(hash))
		}
		return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
	}}
	svc := NewService(nil, sqlc.New(dbtx))

	user, err := svc.Authenticate(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != "01BX5ZZKBKACTAV9WEVGEMMVR1" {
		t.Fatalf("user id = %q", user.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(context.Background(), "bob", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestGetMissingUser(t *testing.T) {
	svc := NewService(nil, sqlc.New(&fakeDBTX{}))

	_, err := svc.Get(context.Background(), "01BX5ZZKBKACTAV9WEVGEMMVR1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Get error = %v, want ErrUserNotFound", err)
	}
}
