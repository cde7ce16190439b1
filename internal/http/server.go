package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tempo/internal/auth"
	"tempo/internal/cache"
	"tempo/internal/core"
	"tempo/internal/storage"
	appweb "tempo/web"
)

// Reference data is static, so dropdown lookups are served from a short TTL
// cache instead of hitting SQLite on every request.
const (
	refCacheTTL  = 5 * time.Minute
	refCacheSize = 64
)

// Store is the read side of the repository the handlers query.
type Store interface {
	CreateUser(ctx context.Context, u core.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	GetUserByID(ctx context.Context, id int64) (core.User, error)
	ListProjects(ctx context.Context) ([]core.Project, error)
	ListTasksByProject(ctx context.Context, projectID int64) ([]core.Task, error)
	ListEntries(ctx context.Context, userID int64, sortBy storage.SortColumn) ([]storage.EntryListing, error)
	GetEntry(ctx context.Context, userID, id int64) (core.Entry, error)
	FetchEntriesInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.EntryRow, error)
	FetchEntriesInWeek(ctx context.Context, userID int64, weekStart core.Date) ([]core.EntryRow, error)
	Ping(ctx context.Context) error
}

// EntryMutator is the write side; the entry service implements it so every
// mutation goes through the SQLite-first, publish-after flow.
type EntryMutator interface {
	CreateEntry(ctx context.Context, e core.Entry) (int64, error)
	UpdateEntry(ctx context.Context, e core.Entry) error
	DeleteEntry(ctx context.Context, userID, id int64) error
}

type Server struct {
	http.Server
	templates *template.Template
	store     Store
	entries   EntryMutator
	sessions  *auth.SessionStore

	projectCache *cache.LRU[[]core.Project]
	taskCache    *cache.LRU[[]core.Task]

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, store Store, entries EntryMutator, sessions *auth.SessionStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        store,
		entries:      entries,
		sessions:     sessions,
		projectCache: cache.NewLRU[[]core.Project](refCacheSize, refCacheTTL),
		taskCache:    cache.NewLRU[[]core.Task](refCacheSize, refCacheTTL),
		rateLimiter:  newRateLimiter(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.withSecurity(s.handleLanding))
	mux.HandleFunc("GET /signup", s.withSecurity(s.handleSignupPage))
	mux.HandleFunc("POST /signup", s.withSecurity(s.handleSignup))
	mux.HandleFunc("GET /login", s.withSecurity(s.handleLoginPage))
	mux.HandleFunc("POST /login", s.withSecurity(s.handleLogin))
	mux.HandleFunc("POST /logout", s.withSecurity(s.handleLogout))

	mux.HandleFunc("GET /home", s.withSecurity(s.requirePage(s.handleHome)))
	mux.HandleFunc("POST /entries", s.withSecurity(s.requirePage(s.handleCreateEntry)))
	mux.HandleFunc("GET /entries/{id}/edit", s.withSecurity(s.requirePage(s.handleEditEntry)))
	mux.HandleFunc("POST /entries/{id}", s.withSecurity(s.requirePage(s.handleUpdateEntry)))
	mux.HandleFunc("POST /entries/{id}/delete", s.withSecurity(s.requirePage(s.handleDeleteEntry)))

	mux.HandleFunc("GET /api/projects", s.withSecurity(s.requireAPI(s.handleListProjects)))
	mux.HandleFunc("GET /api/projects/{id}/tasks", s.withSecurity(s.requireAPI(s.handleListTasks)))

	mux.HandleFunc("GET /analysis", s.withSecurity(s.requirePage(s.handleAnalysisPage)))
	mux.HandleFunc("GET /api/analysis", s.withSecurity(s.requireAPI(s.handleAnalysisJSON)))
	mux.HandleFunc("GET /api/timesheet/weekly/{date}", s.withSecurity(s.requireAPI(s.handleWeeklyJSON)))
	mux.HandleFunc("GET /weekly", s.withSecurity(s.requirePage(s.handleWeeklyPage)))
	mux.HandleFunc("GET /export/weekly.xlsx", s.withSecurity(s.requirePage(s.handleExportWeeklyExcel)))
	mux.HandleFunc("GET /export/weekly.csv", s.withSecurity(s.requirePage(s.handleExportWeeklyCSV)))

	return s
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.sessions != nil {
			s.sessions.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) listProjects(ctx context.Context) ([]core.Project, error) {
	if projects, ok := s.projectCache.Get("all"); ok {
		return projects, nil
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	s.projectCache.Set("all", projects)
	return projects, nil
}

func (s *Server) listTasks(ctx context.Context, projectID int64) ([]core.Task, error) {
	key := strconv.FormatInt(projectID, 10)
	if tasks, ok := s.taskCache.Get(key); ok {
		return tasks, nil
	}
	tasks, err := s.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.taskCache.Set(key, tasks)
	return tasks, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
