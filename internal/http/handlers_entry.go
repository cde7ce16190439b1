package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tempo/internal/core"
	applog "tempo/internal/log"
	"tempo/internal/storage"
)

type projectJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type taskJSON struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

// homeData feeds the home template: the user's entries plus the reference
// data the entry form needs.
type homeData struct {
	Entries  []storage.EntryListing
	Projects []projectJSON
	Sort     string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request, userID int64) {
	sortBy := storage.ParseSortColumn(r.URL.Query().Get("sort"))

	entries, err := s.store.ListEntries(r.Context(), userID, sortBy)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry listing failed",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldUserID, userID, "error", err)
		InternalServerError("Could not load entries").Write(w)
		return
	}

	projects, err := s.listProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Project listing failed",
			applog.FieldComponent, applog.ComponentEntry, "error", err)
		InternalServerError("Could not load projects").Write(w)
		return
	}

	data := homeData{
		Entries: entries,
		Sort:    sortBy.String(),
	}
	for _, p := range projects {
		data.Projects = append(data.Projects, projectJSON{ID: p.ID, Name: p.Name})
	}
	s.render(w, r, "home.html", data)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request, userID int64) {
	payload, err := parseEntryPayload(w, r)
	if err != nil {
		writePayloadError(w, err)
		return
	}

	entry, err := payload.toEntry(userID)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.entries.CreateEntry(r.Context(), entry)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry creation failed",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldUserID, userID, "error", err)
		InternalServerError("Could not save entry").Write(w)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusCreated).
			TriggerEntryCreated(id).
			Write(w)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := parsePathID(r, "id")
	if err != nil {
		BadRequestError("Invalid entry id").Write(w)
		return
	}

	entry, err := s.store.GetEntry(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Entry not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Entry lookup failed",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldEntryID, id, "error", err)
		InternalServerError("Could not load entry").Write(w)
		return
	}

	tasks, err := s.listTasks(r.Context(), entry.ProjectID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Task listing failed",
			applog.FieldComponent, applog.ComponentEntry, "error", err)
		InternalServerError("Could not load tasks").Write(w)
		return
	}
	projects, err := s.listProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Project listing failed",
			applog.FieldComponent, applog.ComponentEntry, "error", err)
		InternalServerError("Could not load projects").Write(w)
		return
	}

	data := struct {
		Entry    core.Entry
		Projects []projectJSON
		Tasks    []taskJSON
	}{Entry: entry}
	for _, p := range projects {
		data.Projects = append(data.Projects, projectJSON{ID: p.ID, Name: p.Name})
	}
	for _, t := range tasks {
		data.Tasks = append(data.Tasks, taskJSON{ID: t.ID, ProjectID: t.ProjectID, Name: t.Name})
	}
	s.render(w, r, "edit.html", data)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := parsePathID(r, "id")
	if err != nil {
		BadRequestError("Invalid entry id").Write(w)
		return
	}

	payload, err := parseEntryPayload(w, r)
	if err != nil {
		writePayloadError(w, err)
		return
	}

	entry, err := payload.toEntry(userID)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	entry.ID = id

	if err := s.entries.UpdateEntry(r.Context(), entry); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Entry not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Entry update failed",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldEntryID, id, "error", err)
		InternalServerError("Could not update entry").Write(w)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().TriggerEntryUpdated(id).Write(w)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := parsePathID(r, "id")
	if err != nil {
		BadRequestError("Invalid entry id").Write(w)
		return
	}

	if err := s.entries.DeleteEntry(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Entry not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Entry deletion failed",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldEntryID, id, "error", err)
		InternalServerError("Could not delete entry").Write(w)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().TriggerEntryDeleted(id).Write(w)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, userID int64) {
	projects, err := s.listProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Project listing failed",
			applog.FieldComponent, applog.ComponentEntry, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load projects"})
		return
	}

	out := make([]projectJSON, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectJSON{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, userID int64) {
	projectID, err := parsePathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
		return
	}

	tasks, err := s.listTasks(r.Context(), projectID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Task listing failed",
			applog.FieldComponent, applog.ComponentEntry, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load tasks"})
		return
	}

	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskJSON{ID: t.ID, ProjectID: t.ProjectID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// writePayloadError maps parse failures to 422 for validation errors and 400
// for malformed bodies.
func writePayloadError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		UnprocessableEntityError("Invalid entry fields").Write(w)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
		return
	}
	BadRequestError("Malformed request body").Write(w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
