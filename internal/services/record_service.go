package services

import (
	"context"

	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/storage"
)

// RecordService validates and stores income and expense records.
type RecordService struct {
	store     RecordStore
	listeners []ChangeListener
	logger    *log.Logger
}

func NewRecordService(store RecordStore, listeners ...ChangeListener) *RecordService {
	return &RecordService{
		store:     store,
		listeners: listeners,
		logger:    log.WithComponent(log.ComponentRecords),
	}
}

func (s *RecordService) Create(ctx context.Context, userID int64, in core.RecordInput) (core.Record, error) {
	if in.Source == "" {
		in.Source = core.SourceManual
	}
	if err := in.Validate(); err != nil {
		return core.Record{}, err
	}

	rec, err := s.store.CreateRecord(ctx, userID, in)
	if err != nil {
		return core.Record{}, err
	}
	s.changed(userID)
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, userID, id int64) (core.Record, error) {
	return s.store.GetRecord(ctx, userID, id)
}

func (s *RecordService) List(ctx context.Context, userID int64, f storage.RecordFilter) ([]core.Record, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, core.ErrInvalidRecordType
	}
	return s.store.ListRecords(ctx, userID, f)
}

// Update replaces amount, service and date. The stored type wins over
// whatever type the caller sent.
func (s *RecordService) Update(ctx context.Context, userID, id int64, in core.RecordInput) (core.Record, error) {
	existing, err := s.store.GetRecord(ctx, userID, id)
	if err != nil {
		return core.Record{}, err
	}
	in.Type = existing.Type
	in.Source = existing.Source
	if err := in.Validate(); err != nil {
		return core.Record{}, err
	}

	rec, err := s.store.UpdateRecord(ctx, userID, id, in)
	if err != nil {
		return core.Record{}, err
	}
	s.logger.InfoContext(ctx, "Record updated", log.FieldRecordID, id, log.FieldUserID, userID)
	s.changed(userID)
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteRecord(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

func (s *RecordService) changed(userID int64) {
	for _, l := range s.listeners {
		l.RecordsChanged(userID)
	}
}
