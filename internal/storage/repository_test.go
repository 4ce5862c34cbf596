package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"walletnote/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "walletnote.db")
	db, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db)
}

func mustUser(t *testing.T, r *SQLiteRepository, email string) core.User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), "tester", email, "hash", core.DefaultCurrency)
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	return u
}

func mustRecord(t *testing.T, r *SQLiteRepository, userID int64, typ core.RecordType, cents int64, service string, date core.Date) core.Record {
	t.Helper()
	rec, err := r.CreateRecord(context.Background(), userID, core.RecordInput{
		Type:    typ,
		Amount:  core.MoneyFromCents(cents),
		Service: service,
		Date:    date,
	})
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	return rec
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "walletnote.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), dbPath)
		if err != nil {
			t.Fatalf("Open() attempt %d error = %v", i+1, err)
		}
		db.Close()
	}

	version, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("SchemaVersion() = %d, dirty=%v; want 1, false", version, dirty)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	u := mustUser(t, r, "ann@example.com")
	if u.ID == 0 || u.Currency != core.DefaultCurrency {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := r.CreateUser(ctx, "other", "ann@example.com", "hash", core.DefaultCurrency); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email error = %v, want ErrDuplicateEmail", err)
	}

	got, err := r.GetUserByEmail(ctx, "ann@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail() = %+v, %v", got, err)
	}

	if _, err := r.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}

	if err := r.UpdateCurrency(ctx, u.ID, "EUR"); err != nil {
		t.Fatalf("UpdateCurrency() error = %v", err)
	}
	got, _ = r.GetUser(ctx, u.ID)
	if got.Currency != "EUR" {
		t.Errorf("currency = %s, want EUR", got.Currency)
	}

	if err := r.UpdateCurrency(ctx, 9999, "EUR"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCurrency(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	r := newTestRepo(t).WithClock(func() time.Time { return now })
	u := mustUser(t, r, "ann@example.com")

	if err := r.CreateSession(ctx, "live", u.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := r.CreateSession(ctx, "stale", u.ID, now.Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := r.SessionUser(ctx, "live")
	if err != nil || got.ID != u.ID {
		t.Fatalf("SessionUser(live) = %+v, %v", got, err)
	}
	if _, err := r.SessionUser(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionUser(stale) error = %v, want ErrNotFound", err)
	}

	n, err := r.DeleteExpiredSessions(ctx)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, %v; want 1", n, err)
	}

	if err := r.DeleteSession(ctx, "live"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := r.SessionUser(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionUser after delete error = %v, want ErrNotFound", err)
	}
}

func TestRecordsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	ann := mustUser(t, r, "ann@example.com")
	bob := mustUser(t, r, "bob@example.com")

	rec := mustRecord(t, r, ann.ID, core.Expense, 1250, "Coffee Shop", core.NewDate(2024, 3, 15))
	if rec.Source != core.SourceManual {
		t.Errorf("default source = %s, want manual", rec.Source)
	}
	if rec.Amount.String() != "12.50" || rec.Date.String() != "2024-03-15" {
		t.Errorf("round trip mismatch: %+v", rec)
	}

	if _, err := r.GetRecord(ctx, bob.ID, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRecord by other user error = %v, want ErrNotFound", err)
	}

	in := core.RecordInput{Type: core.Expense, Amount: core.MoneyFromCents(999), Service: "Tea", Date: core.NewDate(2024, 3, 16)}
	if _, err := r.UpdateRecord(ctx, bob.ID, rec.ID, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateRecord by other user error = %v, want ErrNotFound", err)
	}
	if err := r.DeleteRecord(ctx, bob.ID, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteRecord by other user error = %v, want ErrNotFound", err)
	}

	updated, err := r.UpdateRecord(ctx, ann.ID, rec.ID, in)
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}
	if updated.Service != "Tea" || updated.Amount.Cents() != 999 || updated.Date.String() != "2024-03-16" {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := r.DeleteRecord(ctx, ann.ID, rec.ID); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if _, err := r.GetRecord(ctx, ann.ID, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRecord after delete error = %v, want ErrNotFound", err)
	}
}

func TestListRecords(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := mustUser(t, r, "ann@example.com")

	mustRecord(t, r, u.ID, core.Expense, 100, "Old", core.NewDate(2024, 1, 1))
	mustRecord(t, r, u.ID, core.Income, 5000, "Salary", core.NewDate(2024, 2, 1))
	mustRecord(t, r, u.ID, core.Expense, 300, "New", core.NewDate(2024, 3, 1))

	tests := []struct {
		name   string
		filter RecordFilter
		want   []string
	}{
		{"all newest first", RecordFilter{}, []string{"New", "Salary", "Old"}},
		{"expenses only", RecordFilter{Type: core.Expense}, []string{"New", "Old"}},
		{"limited", RecordFilter{Limit: 1}, []string{"New"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ListRecords(ctx, u.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListRecords() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, rec := range got {
				if rec.Service != tt.want[i] {
					t.Errorf("record %d = %s, want %s", i, rec.Service, tt.want[i])
				}
			}
		})
	}
}

func TestAggregations(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := mustUser(t, r, "ann@example.com")
	other := mustUser(t, r, "bob@example.com")

	mustRecord(t, r, u.ID, core.Income, 100000, "Salary", core.NewDate(2024, 1, 31))
	mustRecord(t, r, u.ID, core.Expense, 1250, "Coffee", core.NewDate(2024, 1, 15))
	mustRecord(t, r, u.ID, core.Expense, 750, "Coffee", core.NewDate(2024, 2, 3))
	mustRecord(t, r, u.ID, core.Expense, 5000, "Rent", core.NewDate(2024, 2, 1))
	mustRecord(t, r, u.ID, core.Expense, 999, "Books", core.NewDate(2023, 12, 31))
	mustRecord(t, r, other.ID, core.Expense, 123456, "Elsewhere", core.NewDate(2024, 1, 15))

	t.Run("summary by type", func(t *testing.T) {
		got, err := r.SummaryByType(ctx, u.ID)
		if err != nil {
			t.Fatalf("SummaryByType() error = %v", err)
		}
		if got.Income.Cents() != 100000 || got.Expense.Cents() != 7999 {
			t.Errorf("SummaryByType() = %+v", got)
		}
	})

	t.Run("expense by service", func(t *testing.T) {
		got, err := r.ExpenseByService(ctx, u.ID)
		if err != nil {
			t.Fatalf("ExpenseByService() error = %v", err)
		}
		want := []struct {
			service string
			cents   int64
		}{{"Rent", 5000}, {"Coffee", 2000}, {"Books", 999}}
		if len(got) != len(want) {
			t.Fatalf("got %d services, want %d", len(got), len(want))
		}
		for i, w := range want {
			if got[i].Service != w.service || got[i].Total.Cents() != w.cents {
				t.Errorf("service %d = %s %s, want %s %d", i, got[i].Service, got[i].Total, w.service, w.cents)
			}
		}
	})

	t.Run("range summary", func(t *testing.T) {
		got, err := r.RangeSummary(ctx, u.ID, core.NewDate(2024, 1, 1), core.NewDate(2024, 2, 1))
		if err != nil {
			t.Fatalf("RangeSummary() error = %v", err)
		}
		if got.Income.Cents() != 100000 || got.Expense.Cents() != 1250 {
			t.Errorf("January summary = %+v", got)
		}
	})

	t.Run("yearly summary", func(t *testing.T) {
		got, err := r.YearlySummary(ctx, u.ID, 2024)
		if err != nil {
			t.Fatalf("YearlySummary() error = %v", err)
		}
		if got.Income[0].Cents() != 100000 {
			t.Errorf("January income = %s", got.Income[0])
		}
		if got.Expense[0].Cents() != 1250 || got.Expense[1].Cents() != 5750 {
			t.Errorf("expenses = %s, %s", got.Expense[0], got.Expense[1])
		}
		for m := 2; m < 12; m++ {
			if !got.Expense[m].IsZero() || !got.Income[m].IsZero() {
				t.Errorf("month %d should be empty", m+1)
			}
		}
	})
}
