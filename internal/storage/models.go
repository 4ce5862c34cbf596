package storage

type User struct {
	ID                int64
	Username          string
	Email             string
	PasswordHash      string
	PreferredCurrency string
	CreatedAt         int64
}

type Session struct {
	Token     string
	UserID    int64
	ExpiresAt int64
	CreatedAt int64
}

type Record struct {
	ID          int64
	UserID      int64
	RecordType  string
	AmountCents int64
	Service     string
	RecordDate  string
	Source      string
	CreatedAt   int64
	UpdatedAt   int64
}

type TypeTotalRow struct {
	RecordType  string
	TotalAmount int64
}

type ServiceTotalRow struct {
	Service     string
	TotalAmount int64
}

type MonthTotalRow struct {
	Month       int64
	RecordType  string
	TotalAmount int64
}
