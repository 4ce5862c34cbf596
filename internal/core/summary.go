package core

// TypeTotals holds summed income and expense for some period.
type TypeTotals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
}

// Balance is income minus expense; it may be negative.
func (t TypeTotals) Balance() Money {
	return t.Income.Sub(t.Expense)
}

// Add accumulates amount into the bucket for typ.
func (t *TypeTotals) Add(typ RecordType, amount Money) {
	switch typ {
	case Income:
		t.Income = t.Income.Add(amount)
	case Expense:
		t.Expense = t.Expense.Add(amount)
	}
}

// ServiceTotal is the expense total for one service/product name.
type ServiceTotal struct {
	Service string `json:"service"`
	Total   Money  `json:"total"`
}

// YearTotals holds twelve monthly buckets per record type, January first.
type YearTotals struct {
	Year    int       `json:"year"`
	Income  [12]Money `json:"income"`
	Expense [12]Money `json:"expense"`
}

// Add accumulates amount into the bucket for typ and month (1-12).
// Out-of-range months are ignored.
func (y *YearTotals) Add(typ RecordType, month int, amount Money) {
	if month < 1 || month > 12 {
		return
	}
	switch typ {
	case Income:
		y.Income[month-1] = y.Income[month-1].Add(amount)
	case Expense:
		y.Expense[month-1] = y.Expense[month-1].Add(amount)
	}
}
