// Package api serves the journal over HTTP with bearer-token auth.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julianstephens/pjournal/internal/auth"
	"github.com/julianstephens/pjournal/internal/chart"
	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/journal"
	"github.com/julianstephens/pjournal/internal/models"
)

const maxBodyBytes = 1 << 20

type handler struct {
	svc *journal.Service
}

// NewRouter builds the HTTP handler. Every /api route requires a bearer
// token signed by signer; the token's owner selects whose journal is used.
func NewRouter(svc *journal.Service, signer *auth.Signer) http.Handler {
	h := &handler{svc: svc}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/subjects", h.listSubjects)
	api.HandleFunc("POST /api/subjects", h.createSubject)
	api.HandleFunc("GET /api/subjects/{ref}", h.getSubject)
	api.HandleFunc("PUT /api/subjects/{ref}", h.saveTemplate)
	api.HandleFunc("DELETE /api/subjects/{ref}", h.deleteSubject)
	api.HandleFunc("GET /api/subjects/{ref}/export", h.exportSubject)
	api.HandleFunc("POST /api/import", h.importSubject)
	api.HandleFunc("GET /api/subjects/{ref}/entries", h.listEntries)
	api.HandleFunc("POST /api/subjects/{ref}/entries", h.createEntry)
	api.HandleFunc("GET /api/subjects/{ref}/entries/{id}", h.getEntry)
	api.HandleFunc("GET /api/subjects/{ref}/chart", h.chart)
	api.HandleFunc("GET /api/settings", h.getSettings)
	api.HandleFunc("PUT /api/settings", h.updateSettings)
	api.HandleFunc("DELETE /api/account", h.deleteAccount)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
	})
	mux.Handle("/api/", RequireAuth(signer, api))

	return recoverPanics(LogRequests(SecureHeaders(mux)))
}

// owner returns the service bound to the authenticated owner.
func (h *handler) owner(r *http.Request) *journal.Service {
	id, _ := auth.OwnerFrom(r.Context())
	return h.svc.ForOwner(id)
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.KindInvalid, err, "decode request body")
	}
	return nil
}

func (h *handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.owner(r).Subjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if subjects == nil {
		subjects = []models.SubjectSummary{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

type createSubjectRequest struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

func (h *handler) createSubject(w http.ResponseWriter, r *http.Request) {
	var req createSubjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	kind, ok := constants.ParseTemplateKind(req.Template)
	if !ok {
		writeError(w, errors.New(errors.KindInvalid, "unknown template kind %q", req.Template))
		return
	}
	subject, err := h.owner(r).AddSubject(r.Context(), req.Name, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subject)
}

func (h *handler) getSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.owner(r).Subject(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *handler) saveTemplate(w http.ResponseWriter, r *http.Request) {
	var draft models.Subject
	if err := decode(r, &draft); err != nil {
		writeError(w, err)
		return
	}
	subject, err := h.owner(r).SaveTemplate(r.Context(), r.PathValue("ref"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *handler) deleteSubject(w http.ResponseWriter, r *http.Request) {
	if _, err := h.owner(r).DeleteSubject(r.Context(), r.PathValue("ref")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) exportSubject(w http.ResponseWriter, r *http.Request) {
	data, err := h.owner(r).Export(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

func (h *handler) importSubject(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.Wrap(errors.KindInvalid, err, "read request body"))
		return
	}
	subject, err := h.owner(r).Import(r.Context(), data, r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subject)
}

func (h *handler) listEntries(w http.ResponseWriter, r *http.Request) {
	svc := h.owner(r)
	subject, err := svc.Subject(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := svc.Entries(r.Context(), subject.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var posted models.Entry
	if err := decode(r, &posted); err != nil {
		writeError(w, err)
		return
	}
	svc := h.owner(r)
	subject, err := svc.Subject(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := svc.RecordEntry(r.Context(), subject, posted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *handler) getEntry(w http.ResponseWriter, r *http.Request) {
	svc := h.owner(r)
	subject, err := svc.Subject(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := svc.Entry(r.Context(), subject.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type chartResponse struct {
	Field  string        `json:"field"`
	Points []chart.Point `json:"points"`
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		writeError(w, errors.New(errors.KindInvalid, "field query parameter is required"))
		return
	}
	svc := h.owner(r)
	subject, err := svc.Subject(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	points, err := svc.Chart(r.Context(), subject.ID, field)
	if err != nil {
		writeError(w, err)
		return
	}
	if points == nil {
		points = []chart.Point{}
	}
	writeJSON(w, http.StatusOK, chartResponse{Field: field, Points: points})
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.owner(r).Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	Bodyweight *float64 `json:"bodyweight"`
	Units      *string  `json:"units"`
}

func (h *handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.owner(r).UpdateSettings(r.Context(), journal.SettingsUpdate{
		Bodyweight: req.Bodyweight,
		Units:      req.Units,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.owner(r).DeleteAccount(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
