package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"walletnote/internal/core"
	"walletnote/internal/log"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// DefaultRecentLimit is used when a listing asks for no explicit limit.
const DefaultRecentLimit = 10

// MaxListLimit caps record listings.
const MaxListLimit = 500

// RecordFilter narrows a record listing. A zero Type lists both kinds.
type RecordFilter struct {
	Type  core.RecordType
	Limit int
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
	now     func() time.Time
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open creates the database file if needed, migrates it and returns the pool.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// NewSQLiteRepository wraps an open pool. The caller owns db and closes it.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  log.WithComponent(log.ComponentStorage),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for timestamps and session expiry.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email, passwordHash string, currency core.Currency) (core.User, error) {
	u, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		PreferredCurrency: string(currency),
		CreatedAt:         r.now().Unix(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	r.logger.InfoContext(ctx, "User created", log.FieldUserID, u.ID)
	return toCoreUser(u), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, notFound(err, "get user by email")
	}
	return toCoreUser(u), nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, notFound(err, "get user")
	}
	return toCoreUser(u), nil
}

func (r *SQLiteRepository) UpdateCurrency(ctx context.Context, userID int64, currency core.Currency) error {
	n, err := r.queries.UpdateUserCurrency(ctx, UpdateUserCurrencyParams{
		PreferredCurrency: string(currency),
		ID:                userID,
	})
	if err != nil {
		return fmt.Errorf("update currency: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	err := r.queries.CreateSession(ctx, CreateSessionParams{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
		CreatedAt: r.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionUser resolves a live session token to its user.
func (r *SQLiteRepository) SessionUser(ctx context.Context, token string) (core.User, error) {
	u, err := r.queries.GetSessionUser(ctx, GetSessionUserParams{
		Token: token,
		Now:   r.now().Unix(),
	})
	if err != nil {
		return core.User{}, notFound(err, "get session user")
	}
	return toCoreUser(u), nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if err := r.queries.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteExpiredSessions(ctx, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateRecord(ctx context.Context, userID int64, in core.RecordInput) (core.Record, error) {
	source := in.Source
	if source == "" {
		source = core.SourceManual
	}
	now := r.now().Unix()
	rec, err := r.queries.CreateRecord(ctx, CreateRecordParams{
		UserID:      userID,
		RecordType:  string(in.Type),
		AmountCents: in.Amount.Cents(),
		Service:     in.Service,
		RecordDate:  in.Date.String(),
		Source:      string(source),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return core.Record{}, fmt.Errorf("create record: %w", err)
	}

	r.logger.InfoContext(ctx, "Record saved",
		log.FieldRecordID, rec.ID,
		log.FieldUserID, userID,
		log.FieldRecordType, rec.RecordType,
		log.FieldAmountCents, rec.AmountCents,
		log.FieldSource, rec.Source)

	return toCoreRecord(rec)
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, userID, id int64) (core.Record, error) {
	rec, err := r.queries.GetRecord(ctx, GetRecordParams{ID: id, UserID: userID})
	if err != nil {
		return core.Record{}, notFound(err, "get record")
	}
	return toCoreRecord(rec)
}

// ListRecords returns the user's records, newest record date first.
func (r *SQLiteRepository) ListRecords(ctx context.Context, userID int64, f RecordFilter) ([]core.Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.queries.ListRecords(ctx, ListRecordsParams{
		UserID:     userID,
		RecordType: string(f.Type),
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toCoreRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// UpdateRecord changes amount, service and date. Type and source are fixed at
// creation.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, userID, id int64, in core.RecordInput) (core.Record, error) {
	rec, err := r.queries.UpdateRecord(ctx, UpdateRecordParams{
		AmountCents: in.Amount.Cents(),
		Service:     in.Service,
		RecordDate:  in.Date.String(),
		UpdatedAt:   r.now().Unix(),
		ID:          id,
		UserID:      userID,
	})
	if err != nil {
		return core.Record{}, notFound(err, "update record")
	}
	return toCoreRecord(rec)
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteRecord(ctx, DeleteRecordParams{ID: id, UserID: userID})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	r.logger.InfoContext(ctx, "Record deleted", log.FieldRecordID, id, log.FieldUserID, userID)
	return nil
}

// SummaryByType totals every record of the user by type.
func (r *SQLiteRepository) SummaryByType(ctx context.Context, userID int64) (core.TypeTotals, error) {
	return r.sumRange(ctx, userID, "0000-01-01", "9999-12-32")
}

// RangeSummary totals records dated in [from, to).
func (r *SQLiteRepository) RangeSummary(ctx context.Context, userID int64, from, to core.Date) (core.TypeTotals, error) {
	return r.sumRange(ctx, userID, from.String(), to.String())
}

func (r *SQLiteRepository) sumRange(ctx context.Context, userID int64, from, to string) (core.TypeTotals, error) {
	rows, err := r.queries.SumByType(ctx, SumByTypeParams{UserID: userID, From: from, To: to})
	if err != nil {
		return core.TypeTotals{}, fmt.Errorf("sum by type: %w", err)
	}

	var totals core.TypeTotals
	for _, row := range rows {
		totals.Add(core.RecordType(row.RecordType), core.MoneyFromCents(row.TotalAmount))
	}
	return totals, nil
}

// ExpenseByService totals expenses per service, largest first.
func (r *SQLiteRepository) ExpenseByService(ctx context.Context, userID int64) ([]core.ServiceTotal, error) {
	rows, err := r.queries.SumExpenseByService(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum expense by service: %w", err)
	}

	totals := make([]core.ServiceTotal, len(rows))
	for i, row := range rows {
		totals[i] = core.ServiceTotal{
			Service: row.Service,
			Total:   core.MoneyFromCents(row.TotalAmount),
		}
	}
	return totals, nil
}

// YearlySummary buckets a calendar year's records by month.
func (r *SQLiteRepository) YearlySummary(ctx context.Context, userID int64, year int) (core.YearTotals, error) {
	rows, err := r.queries.SumByMonth(ctx, SumByMonthParams{
		UserID: userID,
		From:   core.NewDate(year, 1, 1).String(),
		To:     core.NewDate(year+1, 1, 1).String(),
	})
	if err != nil {
		return core.YearTotals{}, fmt.Errorf("sum by month: %w", err)
	}

	totals := core.YearTotals{Year: year}
	for _, row := range rows {
		totals.Add(core.RecordType(row.RecordType), int(row.Month), core.MoneyFromCents(row.TotalAmount))
	}
	return totals, nil
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Currency:     core.Currency(u.PreferredCurrency),
		CreatedAt:    time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toCoreRecord(r Record) (core.Record, error) {
	date, err := core.ParseDate(r.RecordDate)
	if err != nil {
		return core.Record{}, fmt.Errorf("record %d: %w", r.ID, err)
	}
	return core.Record{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      core.RecordType(r.RecordType),
		Amount:    core.MoneyFromCents(r.AmountCents),
		Service:   r.Service,
		Date:      date,
		Source:    core.Source(r.Source),
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(r.UpdatedAt, 0).UTC(),
	}, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
