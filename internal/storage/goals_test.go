package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoanghai1803/booker/internal/models"
)

func TestGetOrCreateGoal_CreatesDefault(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, 1)

	if _, err := store.GetGoal(ctx, userID, 2025); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first access, got: %v", err)
	}

	g, err := store.GetOrCreateGoal(ctx, userID, 2025, 12)
	if err != nil {
		t.Fatalf("GetOrCreateGoal() error: %v", err)
	}
	if g.BooksTarget != 12 {
		t.Errorf("BooksTarget = %d, want 12", g.BooksTarget)
	}
	if g.PagesTarget != nil {
		t.Errorf("PagesTarget = %v, want nil", *g.PagesTarget)
	}

	again, err := store.GetOrCreateGoal(ctx, userID, 2025, 30)
	if err != nil {
		t.Fatalf("second GetOrCreateGoal() error: %v", err)
	}
	if again.ID != g.ID || again.BooksTarget != 12 {
		t.Errorf("second access = %+v, want existing goal untouched", again)
	}
}

func TestSetGoal_UpsertsTargets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, 1)

	if _, err := store.GetOrCreateGoal(ctx, userID, 2025, 12); err != nil {
		t.Fatalf("GetOrCreateGoal() error: %v", err)
	}

	g, err := store.SetGoal(ctx, userID, 2025, 24, intPtr(8000))
	if err != nil {
		t.Fatalf("SetGoal() error: %v", err)
	}
	if g.BooksTarget != 24 {
		t.Errorf("BooksTarget = %d, want 24", g.BooksTarget)
	}
	if g.PagesTarget == nil || *g.PagesTarget != 8000 {
		t.Errorf("PagesTarget = %v, want 8000", g.PagesTarget)
	}

	other, err := store.SetGoal(ctx, userID, 2026, 5, nil)
	if err != nil {
		t.Fatalf("SetGoal(2026) error: %v", err)
	}
	if other.ID == g.ID {
		t.Error("goals for different years share an ID")
	}
}

func TestCompletedInYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, 1)

	finished := func(y int, m time.Month) *time.Time {
		d := time.Date(y, m, 15, 0, 0, 0, 0, time.UTC)
		return &d
	}

	rows := []struct {
		pages    *int
		status   models.Status
		finished *time.Time
	}{
		{intPtr(300), models.StatusCompleted, finished(2025, time.January)},
		{nil, models.StatusCompleted, finished(2025, time.December)},
		{intPtr(200), models.StatusCompleted, finished(2024, time.December)},
		{intPtr(500), models.StatusDNF, finished(2025, time.June)},
		{intPtr(100), models.StatusCurrentlyReading, nil},
	}
	for i, r := range rows {
		bookID := seedBook(t, store, "Book "+string(rune('A'+i)), "Author", r.pages)
		if _, err := store.UpsertEntry(ctx, &models.LibraryEntry{
			UserID: userID, BookID: bookID, Status: r.status, DateFinished: r.finished,
		}); err != nil {
			t.Fatalf("UpsertEntry() error: %v", err)
		}
	}

	books, pages, err := store.CompletedInYear(ctx, userID, 2025)
	if err != nil {
		t.Fatalf("CompletedInYear() error: %v", err)
	}
	if books != 2 {
		t.Errorf("books = %d, want 2", books)
	}
	if pages != 300 {
		t.Errorf("pages = %d, want 300", pages)
	}

	books, pages, err = store.CompletedInYear(ctx, userID, 1999)
	if err != nil {
		t.Fatalf("CompletedInYear(1999) error: %v", err)
	}
	if books != 0 || pages != 0 {
		t.Errorf("1999 = %d books / %d pages, want 0/0", books, pages)
	}
}

func TestCompletedInYear_YearBounds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, 1)

	days := []time.Time{
		time.Date(9998, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range days {
		bookID := seedBook(t, store, "Edge "+string(rune('A'+i)), "Author", intPtr(100))
		if _, err := store.UpsertEntry(ctx, &models.LibraryEntry{
			UserID: userID, BookID: bookID, Status: models.StatusCompleted, DateFinished: &d,
		}); err != nil {
			t.Fatalf("UpsertEntry() error: %v", err)
		}
	}

	tests := []struct {
		year      int
		wantBooks int
		wantPages int
	}{
		{9998, 1, 100},
		{9999, 2, 200},
	}
	for _, tt := range tests {
		books, pages, err := store.CompletedInYear(ctx, userID, tt.year)
		if err != nil {
			t.Fatalf("CompletedInYear(%d) error: %v", tt.year, err)
		}
		if books != tt.wantBooks || pages != tt.wantPages {
			t.Errorf("CompletedInYear(%d) = %d books / %d pages, want %d/%d",
				tt.year, books, pages, tt.wantBooks, tt.wantPages)
		}
	}
}
