package service

import (
	"context"
	"errors"
	"testing"

	"social_board/internal/repository"
	"social_board/internal/storage/storagetest"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	users := NewUserService(repository.NewUserRepository(storagetest.New(t)))
	ctx := context.Background()

	u, err := users.Register(ctx, " alice ", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "alice" || u.Password == "pw" {
		t.Fatalf("stored user %+v", u)
	}
	if _, err := users.Register(ctx, "alice", "other"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate register err = %v", err)
	}
	if _, err := users.Register(ctx, "", "pw"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty username err = %v", err)
	}

	got, err := users.Authenticate(ctx, "alice", "pw")
	if err != nil || got.ID != u.ID {
		t.Fatalf("authenticate: %+v %v", got, err)
	}
	if _, err := users.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := users.Authenticate(ctx, "bob", "pw"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown user err = %v", err)
	}
}

func TestBlockValidation(t *testing.T) {
	repos := repository.NewRepositories(storagetest.New(t))
	users := NewUserService(repos.User)
	blocks := NewBlockService(repos.Block, users, nil)
	ctx := context.Background()

	a, _ := users.Register(ctx, "a", "pw")
	b, _ := users.Register(ctx, "b", "pw")

	if err := blocks.Block(ctx, a.ID, a.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self block err = %v", err)
	}
	if err := blocks.Block(ctx, a.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user err = %v", err)
	}
	if err := blocks.Block(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("block: %v", err)
	}
	ex, err := blocks.Excluded(ctx, b.ID)
	if err != nil || ex.Visible(a.ID) {
		t.Fatalf("blocked user should not see the blocker: %v %v", ex, err)
	}
	list, _ := blocks.List(ctx, a.ID)
	if len(list) != 1 || list[0].BlockedID != b.ID {
		t.Fatalf("list = %+v", list)
	}
	if err := blocks.Unblock(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if err := blocks.Unblock(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("repeat unblock: %v", err)
	}
}

func TestErrorCodes(t *testing.T) {
	cases := map[error]string{
		invalid("x"):                 "bad_request",
		ErrNotFound:                  "not_found",
		ErrForbidden:                 "forbidden",
		storageErr(errors.New("db")): "internal_error",
		errors.New("?"):              "internal_error",
	}
	for err, want := range cases {
		if got := ErrorCode(err); got != want {
			t.Errorf("ErrorCode(%v) = %s, want %s", err, got, want)
		}
	}
	if PublicMessage(storageErr(errors.New("password=secret"))) != "internal error" {
		t.Fatal("internal details leaked")
	}
}
