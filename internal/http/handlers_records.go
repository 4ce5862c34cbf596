package http

import (
	"net/http"
	"strconv"

	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/storage"
)

// recordID parses the {id} path segment; anything else is a 404.
func recordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, storage.ErrNotFound
	}
	return id, nil
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	typ, err := core.ParseRecordType(p.Get("type"))
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.createRecord(w, r, p, typ)
}

// handleCreateTyped serves the form endpoints whose path fixes the type.
func (s *Server) handleCreateTyped(typ core.RecordType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := NewRequestBodyParser(w, r)
		if err := p.Parse(); err != nil {
			writeError(w, r, log.OpCreate, err)
			return
		}
		s.createRecord(w, r, p, typ)
	}
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, typ core.RecordType) {
	in, err := p.RecordInput(typ, s.today())
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	rec, err := s.deps.Records.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	fields := log.NewFields().WithRecord(rec.ID, rec.UserID, string(rec.Type), rec.Amount.Cents(), string(rec.Source))
	log.FromContext(r.Context()).InfoContext(r.Context(), "Record created", fields.ToSlice()...)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	f, err := ParseRecordFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}

	records, err := s.deps.Records.List(r.Context(), currentUser(r).ID, f)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}

	rec, err := s.deps.Records.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	userID := currentUser(r).ID
	existing, err := s.deps.Records.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	in, err := p.ApplyTo(existing)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	rec, err := s.deps.Records.Update(r.Context(), userID, id, in)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}

	if err := s.deps.Records.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Record deleted", log.FieldRecordID, id)
	w.WriteHeader(http.StatusNoContent)
}
