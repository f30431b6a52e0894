package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/pipeline"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/store"
)

// maxBodyBytes bounds request bodies; soundings are a few kilobytes.
const maxBodyBytes = 1 << 20

// diagramRequest is the JSON compute request: a sounding inline plus
// pipeline options.
type diagramRequest struct {
	Station string           `json:"station"`
	Time    time.Time        `json:"time"`
	Levels  []sounding.Level `json:"levels"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleComputeDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	snd, err := sounding.New(req.Station, req.Time, req.Levels, req.Options.Policy())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.compute(w, r, snd, req.Options)
}

// handleComputeDiagramCSV accepts a raw CSV body; station and option
// overrides ride in query parameters.
func (s *Server) handleComputeDiagramCSV(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "reading request body"))
		return
	}

	opts := pipeline.Options{
		Station:       r.URL.Query().Get("station"),
		MissingPolicy: r.URL.Query().Get("missing_policy"),
	}
	if v := r.URL.Query().Get("rotation"); v != "" {
		rot, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidConfig, "bad rotation %q", v))
			return
		}
		opts.RotationDegrees = rot
	}

	res, err := s.runner.ExecuteCSV(r.Context(), raw, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.archiveAndRespond(w, r, res)
}

func (s *Server) compute(w http.ResponseWriter, r *http.Request, snd *sounding.Profile, opts pipeline.Options) {
	res, err := s.runner.Execute(r.Context(), snd, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.archiveAndRespond(w, r, res)
}

// archiveAndRespond stores the result when an archive is configured,
// then returns the document verbatim.
func (s *Server) archiveAndRespond(w http.ResponseWriter, r *http.Request, res *pipeline.Result) {
	if s.store != nil && !res.CacheInfo.DiagramHit {
		entry := store.Entry{
			ID:           res.ID,
			Station:      res.Sounding.Station,
			ObservedAt:   res.Sounding.Time,
			CreatedAt:    time.Now().UTC(),
			SoundingHash: res.SoundingHash,
			CAPE:         res.Diagram.CAPE,
			CIN:          res.Diagram.CIN,
			Document:     res.Document,
		}
		for _, m := range res.Diagram.Markers {
			if m.Label == "lcl" {
				entry.LCLPressure = m.Pressure
			}
		}
		if err := s.store.Put(r.Context(), entry); err != nil {
			// The computation succeeded; archive failure is logged, not fatal.
			s.logger.Error("archiving diagram", "id", res.ID, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Document)
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no archive configured"))
		return
	}

	f := store.ListFilter{Station: r.URL.Query().Get("station")}
	if v := r.URL.Query().Get("min_cape"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidConfig, "bad min_cape %q", v))
			return
		}
		f.MinCAPE = c
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidConfig, "bad limit %q", v))
			return
		}
		f.Limit = n
	}

	entries, err := s.store.List(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagrams": entries})
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no archive configured"))
		return
	}
	entry, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Document)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no archive configured"))
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding request body")
	}
	return nil
}
