package visibility

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeRegistry struct {
	blocks [][2]uint // blocker, blocked
	err    error
}

func (f fakeRegistry) BlockedBy(_ context.Context, userID uint) ([]uint, error) {
	var out []uint
	for _, b := range f.blocks {
		if b[0] == userID {
			out = append(out, b[1])
		}
	}
	return out, f.err
}

func (f fakeRegistry) BlockersOf(_ context.Context, userID uint) ([]uint, error) {
	var out []uint
	for _, b := range f.blocks {
		if b[1] == userID {
			out = append(out, b[0])
		}
	}
	return out, f.err
}

func TestResolveIsSymmetric(t *testing.T) {
	reg := fakeRegistry{blocks: [][2]uint{{1, 2}, {3, 1}}}

	ex, err := Resolve(context.Background(), reg, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := ex.IDs(); !reflect.DeepEqual(got, []uint{2, 3}) {
		t.Fatalf("excluded for 1 = %v, want [2 3]", got)
	}

	ex2, _ := Resolve(context.Background(), reg, 2)
	if ex2.Visible(1) {
		t.Fatal("blocker must be hidden from the blocked user too")
	}
	if !ex2.Visible(3) {
		t.Fatal("unrelated user must stay visible")
	}
}

func TestResolvePropagatesError(t *testing.T) {
	boom := errors.New("db down")
	if _, err := Resolve(context.Background(), fakeRegistry{err: boom}, 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestZeroValueHidesNothing(t *testing.T) {
	var ex Excluded
	if !ex.Visible(42) {
		t.Fatal("nil set must hide nothing")
	}
	if len(ex.IDs()) != 0 {
		t.Fatal("nil set must have no ids")
	}
}

type comment struct {
	ID       uint
	AuthorID uint
	Body     string
}

func TestFilterKeepsOrder(t *testing.T) {
	items := []comment{{1, 10, "a"}, {2, 20, "b"}, {3, 10, "c"}, {4, 30, "d"}}
	got := Filter(items, NewExcluded([]uint{10}), func(c comment) uint { return c.AuthorID })
	want := []comment{{2, 20, "b"}, {4, 30, "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter = %+v, want %+v", got, want)
	}
}

func TestExcludeAuthorsScope(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:visibility_scope?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&comment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, c := range []comment{{AuthorID: 1, Body: "x"}, {AuthorID: 2, Body: "y"}, {AuthorID: 3, Body: "z"}} {
		c := c
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var all []comment
	if err := db.Scopes(ExcludeAuthors("author_id", Excluded{})).Find(&all).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("empty set returned %d rows, want 3", len(all))
	}

	var some []comment
	if err := db.Scopes(ExcludeAuthors("author_id", NewExcluded([]uint{1, 3}))).Order("id").Find(&some).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(some) != 1 || some[0].AuthorID != 2 {
		t.Fatalf("filtered = %+v, want only author 2", some)
	}
}
