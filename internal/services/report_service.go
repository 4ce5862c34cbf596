package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"walletnote/internal/cache"
	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/storage"
)

// Dashboard is the landing view after log-in.
type Dashboard struct {
	Username string              `json:"username"`
	Currency core.Currency       `json:"currency"`
	Recent   []core.Record       `json:"recent"`
	Summary  core.TypeTotals     `json:"summary"`
	Balance  core.Money          `json:"balance"`
	Today    core.TypeTotals     `json:"today"`
	Services []core.ServiceTotal `json:"services"`
}

// ReportService computes dashboard and chart aggregates. Results are cached
// per user until a write through RecordsChanged or the cache TTL.
type ReportService struct {
	store  RecordStore
	users  UserStore
	totals cache.Cache[core.TypeTotals]
	lists  cache.Cache[[]core.ServiceTotal]
	years  cache.Cache[core.YearTotals]
	now    func() time.Time
	logger *log.Logger
}

// NewReportService registers its caches with manager when one is given.
func NewReportService(store RecordStore, users UserStore, ttl time.Duration, manager *cache.Manager) *ReportService {
	totals := cache.NewLRUCache[core.TypeTotals](1000, ttl)
	lists := cache.NewLRUCache[[]core.ServiceTotal](500, ttl)
	years := cache.NewLRUCache[core.YearTotals](500, ttl)
	if manager != nil {
		manager.Register(totals)
		manager.Register(lists)
		manager.Register(years)
	}
	return &ReportService{
		store:  store,
		users:  users,
		totals: totals,
		lists:  lists,
		years:  years,
		now:    time.Now,
		logger: log.WithComponent(log.ComponentDashboard),
	}
}

// RecordsChanged drops every cached aggregate of the user.
func (s *ReportService) RecordsChanged(userID int64) {
	prefix := userPrefix(userID)
	n := s.totals.DeletePrefix(prefix) + s.lists.DeletePrefix(prefix) + s.years.DeletePrefix(prefix)
	if n > 0 {
		s.logger.Debug("Report cache invalidated", log.FieldUserID, userID, "entries", n)
	}
}

func userPrefix(userID int64) string {
	return fmt.Sprintf("u%d:", userID)
}

func (s *ReportService) today() core.Date {
	return core.DateOf(s.now())
}

// Summary totals all of the user's records by type.
func (s *ReportService) Summary(ctx context.Context, userID int64) (core.TypeTotals, error) {
	key := userPrefix(userID) + "summary"
	if v, ok := s.totals.Get(key); ok {
		return v, nil
	}
	v, err := s.store.SummaryByType(ctx, userID)
	if err != nil {
		return core.TypeTotals{}, err
	}
	s.totals.Set(key, v)
	return v, nil
}

// ExpenseByService totals expenses per service, largest first.
func (s *ReportService) ExpenseByService(ctx context.Context, userID int64) ([]core.ServiceTotal, error) {
	key := userPrefix(userID) + "services"
	if v, ok := s.lists.Get(key); ok {
		return v, nil
	}
	v, err := s.store.ExpenseByService(ctx, userID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = []core.ServiceTotal{}
	}
	s.lists.Set(key, v)
	return v, nil
}

// Monthly totals one calendar month.
func (s *ReportService) Monthly(ctx context.Context, userID int64, year, month int) (core.TypeTotals, error) {
	if month < 1 || month > 12 {
		return core.TypeTotals{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if err := checkYear(year); err != nil {
		return core.TypeTotals{}, err
	}

	key := fmt.Sprintf("%smonth:%04d-%02d", userPrefix(userID), year, month)
	if v, ok := s.totals.Get(key); ok {
		return v, nil
	}
	from := core.NewDate(year, month, 1)
	to := core.DateOf(from.AddDate(0, 1, 0))
	v, err := s.store.RangeSummary(ctx, userID, from, to)
	if err != nil {
		return core.TypeTotals{}, err
	}
	s.totals.Set(key, v)
	return v, nil
}

// Yearly returns twelve monthly buckets for year.
func (s *ReportService) Yearly(ctx context.Context, userID int64, year int) (core.YearTotals, error) {
	if err := checkYear(year); err != nil {
		return core.YearTotals{}, err
	}

	key := fmt.Sprintf("%syear:%04d", userPrefix(userID), year)
	if v, ok := s.years.Get(key); ok {
		return v, nil
	}
	v, err := s.store.YearlySummary(ctx, userID, year)
	if err != nil {
		return core.YearTotals{}, err
	}
	s.years.Set(key, v)
	return v, nil
}

// Today totals records dated today.
func (s *ReportService) Today(ctx context.Context, userID int64) (core.TypeTotals, error) {
	today := s.today()
	key := userPrefix(userID) + "day:" + today.String()
	if v, ok := s.totals.Get(key); ok {
		return v, nil
	}
	v, err := s.store.RangeSummary(ctx, userID, today, core.DateOf(today.AddDate(0, 0, 1)))
	if err != nil {
		return core.TypeTotals{}, err
	}
	s.totals.Set(key, v)
	return v, nil
}

// Dashboard loads the independent dashboard parts concurrently.
func (s *ReportService) Dashboard(ctx context.Context, userID int64, recentLimit int) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.users.GetUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		d.Username = user.Username
		d.Currency = user.Currency
		return nil
	})
	g.Go(func() error {
		recent, err := s.store.ListRecords(gctx, userID, storage.RecordFilter{Limit: recentLimit})
		if err != nil {
			return fmt.Errorf("load recent records: %w", err)
		}
		if recent == nil {
			recent = []core.Record{}
		}
		d.Recent = recent
		return nil
	})
	g.Go(func() error {
		summary, err := s.Summary(gctx, userID)
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		d.Summary = summary
		return nil
	})
	g.Go(func() error {
		today, err := s.Today(gctx, userID)
		if err != nil {
			return fmt.Errorf("load today: %w", err)
		}
		d.Today = today
		return nil
	})
	g.Go(func() error {
		services, err := s.ExpenseByService(gctx, userID)
		if err != nil {
			return fmt.Errorf("load services: %w", err)
		}
		d.Services = services
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	d.Balance = d.Summary.Balance()
	return d, nil
}

func checkYear(year int) error {
	if year < 1900 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}
