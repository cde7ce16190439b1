package http

import (
	"errors"
	"log/slog"
	"net/http"

	"tempo/internal/auth"
	"tempo/internal/core"
	applog "tempo/internal/log"
	"tempo/internal/storage"
)

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(r); ok {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	s.render(w, r, "index.html", nil)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "signup.html", nil)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	payload, err := parseSignup(r)
	if err != nil {
		UnprocessableEntityError("Invalid signup details").Write(w)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed",
			applog.FieldComponent, applog.ComponentAuth, "error", err)
		InternalServerError("Could not create account").Write(w)
		return
	}

	user := core.User{
		Username:     payload.Username,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		ContactNo:    payload.ContactNo,
		Email:        payload.Email,
		PasswordHash: hash,
	}
	userID, err := s.store.CreateUser(r.Context(), user)
	if err != nil {
		slog.WarnContext(r.Context(), "Signup failed",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldUsername, payload.Username, "error", err)
		UnprocessableEntityError("Username already taken").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "User created",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, userID,
		applog.FieldUsername, payload.Username)

	s.startSession(w, r, userID)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	payload, err := parseCredentials(r)
	if err != nil {
		UnprocessableEntityError("Invalid credentials").Write(w)
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), payload.Username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.ErrorContext(r.Context(), "User lookup failed",
				applog.FieldComponent, applog.ComponentAuth, "error", err)
		}
		ErrorResponse(http.StatusUnauthorized, "Invalid username or password").Write(w)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, payload.Password) {
		slog.WarnContext(r.Context(), "Login rejected",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldUsername, payload.Username)
		ErrorResponse(http.StatusUnauthorized, "Invalid username or password").Write(w)
		return
	}

	s.startSession(w, r, user.ID)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, userID int64) {
	sessionID, err := s.sessions.Create(userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session creation failed",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldUserID, userID, "error", err)
		InternalServerError("Could not start session").Write(w)
		return
	}
	s.setSessionCookie(w, sessionID)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}
