package http

import (
	"context"

	"walletnote/internal/core"
	"walletnote/internal/services"
	"walletnote/internal/storage"
)

// Authenticator manages accounts and login sessions.
type Authenticator interface {
	SignUp(ctx context.Context, username, email, password string) (core.User, services.Session, error)
	Login(ctx context.Context, email, password string) (core.User, services.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (core.User, error)
}

// RecordManager is the owner-scoped record CRUD surface.
type RecordManager interface {
	Create(ctx context.Context, userID int64, in core.RecordInput) (core.Record, error)
	Get(ctx context.Context, userID, id int64) (core.Record, error)
	List(ctx context.Context, userID int64, f storage.RecordFilter) ([]core.Record, error)
	Update(ctx context.Context, userID, id int64, in core.RecordInput) (core.Record, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Reporter answers the chart and dashboard queries.
type Reporter interface {
	Summary(ctx context.Context, userID int64) (core.TypeTotals, error)
	ExpenseByService(ctx context.Context, userID int64) ([]core.ServiceTotal, error)
	Monthly(ctx context.Context, userID int64, year, month int) (core.TypeTotals, error)
	Yearly(ctx context.Context, userID int64, year int) (core.YearTotals, error)
	Today(ctx context.Context, userID int64) (core.TypeTotals, error)
	Dashboard(ctx context.Context, userID int64, recentLimit int) (services.Dashboard, error)
}

// SettingsManager reads and changes user preferences.
type SettingsManager interface {
	Get(ctx context.Context, userID int64) (services.Settings, error)
	SetCurrency(ctx context.Context, userID int64, code string) (core.Currency, error)
}

// ReceiptSubmitter accepts receipt uploads.
type ReceiptSubmitter interface {
	Submit(ctx context.Context, userID int64, up services.ReceiptUpload) (services.ReceiptResult, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ Authenticator    = (*services.AuthService)(nil)
	_ RecordManager    = (*services.RecordService)(nil)
	_ Reporter         = (*services.ReportService)(nil)
	_ SettingsManager  = (*services.SettingService)(nil)
	_ ReceiptSubmitter = (*services.ReceiptService)(nil)
	_ Pinger           = (*storage.SQLiteRepository)(nil)
)
