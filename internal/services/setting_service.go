package services

import (
	"context"

	"walletnote/internal/core"
	"walletnote/internal/log"
)

// Settings is what the settings page shows.
type Settings struct {
	Currency  core.Currency   `json:"currency"`
	Supported []core.Currency `json:"supported"`
}

type SettingService struct {
	users  UserStore
	logger *log.Logger
}

func NewSettingService(users UserStore) *SettingService {
	return &SettingService{users: users, logger: log.WithComponent(log.ComponentApp)}
}

func (s *SettingService) Get(ctx context.Context, userID int64) (Settings, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Settings{}, err
	}
	currency := user.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return Settings{Currency: currency, Supported: core.SupportedCurrencies()}, nil
}

// SetCurrency stores the preferred currency; input is case-insensitive.
func (s *SettingService) SetCurrency(ctx context.Context, userID int64, code string) (core.Currency, error) {
	currency, err := core.ParseCurrency(code)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateCurrency(ctx, userID, currency); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "Currency updated", log.FieldUserID, userID, log.FieldCurrency, currency)
	return currency, nil
}
