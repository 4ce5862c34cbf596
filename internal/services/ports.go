package services

import (
	"context"
	"time"

	"walletnote/internal/amqp"
	"walletnote/internal/core"
	"walletnote/internal/storage"
)

// UserStore persists accounts and login sessions.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string, currency core.Currency) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	UpdateCurrency(ctx context.Context, userID int64, currency core.Currency) error
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	SessionUser(ctx context.Context, token string) (core.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// RecordStore persists records and answers aggregate queries. Every call is
// scoped to one user.
type RecordStore interface {
	CreateRecord(ctx context.Context, userID int64, in core.RecordInput) (core.Record, error)
	GetRecord(ctx context.Context, userID, id int64) (core.Record, error)
	ListRecords(ctx context.Context, userID int64, f storage.RecordFilter) ([]core.Record, error)
	UpdateRecord(ctx context.Context, userID, id int64, in core.RecordInput) (core.Record, error)
	DeleteRecord(ctx context.Context, userID, id int64) error
	SummaryByType(ctx context.Context, userID int64) (core.TypeTotals, error)
	RangeSummary(ctx context.Context, userID int64, from, to core.Date) (core.TypeTotals, error)
	ExpenseByService(ctx context.Context, userID int64) ([]core.ServiceTotal, error)
	YearlySummary(ctx context.Context, userID int64, year int) (core.YearTotals, error)
}

// ScanPublisher hands receipt scans to the worker.
type ScanPublisher interface {
	PublishReceiptScan(ctx context.Context, msg *amqp.ReceiptScanMessage) error
}

// ChangeListener is told when a user's records change.
type ChangeListener interface {
	RecordsChanged(userID int64)
}

var (
	_ UserStore   = (*storage.SQLiteRepository)(nil)
	_ RecordStore = (*storage.SQLiteRepository)(nil)
)
