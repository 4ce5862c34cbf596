package storage

import (
	"context"
)

const createUser = `
INSERT INTO users (username, email, password_hash, preferred_currency, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, username, email, password_hash, preferred_currency, created_at
`

type CreateUserParams struct {
	Username          string
	Email             string
	PasswordHash      string
	PreferredCurrency string
	CreatedAt         int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.PreferredCurrency,
		arg.CreatedAt,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.PreferredCurrency,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByEmail = `
SELECT id, username, email, password_hash, preferred_currency, created_at
FROM users
WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.PreferredCurrency,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByID = `
SELECT id, username, email, password_hash, preferred_currency, created_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.PreferredCurrency,
		&i.CreatedAt,
	)
	return i, err
}

const updateUserCurrency = `
UPDATE users SET preferred_currency = ? WHERE id = ?
`

type UpdateUserCurrencyParams struct {
	PreferredCurrency string
	ID                int64
}

func (q *Queries) UpdateUserCurrency(ctx context.Context, arg UpdateUserCurrencyParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserCurrency, arg.PreferredCurrency, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createSession = `
INSERT INTO sessions (token, user_id, expires_at, created_at)
VALUES (?, ?, ?, ?)
`

type CreateSessionParams struct {
	Token     string
	UserID    int64
	ExpiresAt int64
	CreatedAt int64
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.ExecContext(ctx, createSession,
		arg.Token,
		arg.UserID,
		arg.ExpiresAt,
		arg.CreatedAt,
	)
	return err
}

const getSessionUser = `
SELECT u.id, u.username, u.email, u.password_hash, u.preferred_currency, u.created_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token = ? AND s.expires_at > ?
`

type GetSessionUserParams struct {
	Token string
	Now   int64
}

func (q *Queries) GetSessionUser(ctx context.Context, arg GetSessionUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, getSessionUser, arg.Token, arg.Now)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.PreferredCurrency,
		&i.CreatedAt,
	)
	return i, err
}

const deleteSession = `
DELETE FROM sessions WHERE token = ?
`

func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, token)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions WHERE expires_at <= ?
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createRecord = `
INSERT INTO records (user_id, record_type, amount_cents, service, record_date, source, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, record_type, amount_cents, service, record_date, source, created_at, updated_at
`

type CreateRecordParams struct {
	UserID      int64
	RecordType  string
	AmountCents int64
	Service     string
	RecordDate  string
	Source      string
	CreatedAt   int64
	UpdatedAt   int64
}

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) (Record, error) {
	row := q.db.QueryRowContext(ctx, createRecord,
		arg.UserID,
		arg.RecordType,
		arg.AmountCents,
		arg.Service,
		arg.RecordDate,
		arg.Source,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanRecord(row)
}

const getRecord = `
SELECT id, user_id, record_type, amount_cents, service, record_date, source, created_at, updated_at
FROM records
WHERE id = ? AND user_id = ?
`

type GetRecordParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) GetRecord(ctx context.Context, arg GetRecordParams) (Record, error) {
	row := q.db.QueryRowContext(ctx, getRecord, arg.ID, arg.UserID)
	return scanRecord(row)
}

const listRecords = `
SELECT id, user_id, record_type, amount_cents, service, record_date, source, created_at, updated_at
FROM records
WHERE user_id = ? AND (? = '' OR record_type = ?)
ORDER BY record_date DESC, id DESC
LIMIT ?
`

type ListRecordsParams struct {
	UserID     int64
	RecordType string
	Limit      int64
}

func (q *Queries) ListRecords(ctx context.Context, arg ListRecordsParams) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, listRecords,
		arg.UserID,
		arg.RecordType,
		arg.RecordType,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Record
	for rows.Next() {
		i, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateRecord = `
UPDATE records
SET amount_cents = ?, service = ?, record_date = ?, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING id, user_id, record_type, amount_cents, service, record_date, source, created_at, updated_at
`

type UpdateRecordParams struct {
	AmountCents int64
	Service     string
	RecordDate  string
	UpdatedAt   int64
	ID          int64
	UserID      int64
}

func (q *Queries) UpdateRecord(ctx context.Context, arg UpdateRecordParams) (Record, error) {
	row := q.db.QueryRowContext(ctx, updateRecord,
		arg.AmountCents,
		arg.Service,
		arg.RecordDate,
		arg.UpdatedAt,
		arg.ID,
		arg.UserID,
	)
	return scanRecord(row)
}

const deleteRecord = `
DELETE FROM records WHERE id = ? AND user_id = ?
`

type DeleteRecordParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) DeleteRecord(ctx context.Context, arg DeleteRecordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecord, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumByType = `
SELECT record_type, CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER) AS total_amount
FROM records
WHERE user_id = ? AND record_date >= ? AND record_date < ?
GROUP BY record_type
`

type SumByTypeParams struct {
	UserID int64
	From   string
	To     string
}

func (q *Queries) SumByType(ctx context.Context, arg SumByTypeParams) ([]TypeTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByType, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TypeTotalRow
	for rows.Next() {
		var i TypeTotalRow
		if err := rows.Scan(&i.RecordType, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumExpenseByService = `
SELECT service, CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER) AS total_amount
FROM records
WHERE user_id = ? AND record_type = 'expense'
GROUP BY service
ORDER BY total_amount DESC, service ASC
`

func (q *Queries) SumExpenseByService(ctx context.Context, userID int64) ([]ServiceTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, sumExpenseByService, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ServiceTotalRow
	for rows.Next() {
		var i ServiceTotalRow
		if err := rows.Scan(&i.Service, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumByMonth = `
SELECT CAST(strftime('%m', record_date) AS INTEGER) AS month,
       record_type,
       CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER) AS total_amount
FROM records
WHERE user_id = ? AND record_date >= ? AND record_date < ?
GROUP BY month, record_type
ORDER BY month
`

type SumByMonthParams struct {
	UserID int64
	From   string
	To     string
}

func (q *Queries) SumByMonth(ctx context.Context, arg SumByMonthParams) ([]MonthTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByMonth, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthTotalRow
	for rows.Next() {
		var i MonthTotalRow
		if err := rows.Scan(&i.Month, &i.RecordType, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (Record, error) {
	var i Record
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.RecordType,
		&i.AmountCents,
		&i.Service,
		&i.RecordDate,
		&i.Source,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
