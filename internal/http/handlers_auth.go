package http

import (
	"errors"
	"log/slog"
	"net/http"

	"portfolio/internal/auth"
)

type indexPage struct {
	Error  string
	Notice string
}

// handleIndex renders the registration/login page. A valid session skips
// straight to the menu.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if _, err := auth.ParseToken(cookie.Value, s.sessionSecret); err == nil {
			http.Redirect(w, r, "/menu", http.StatusSeeOther)
			return
		}
	}

	s.render(w, r, "index.html", indexPage{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "index.html", indexPage{Error: "Invalid request format"})
		return
	}

	_, err := s.authSvc.Register(r.Context(),
		sanitizeInput(r.Form.Get("first_name")),
		sanitizeInput(r.Form.Get("last_name")),
		sanitizeInput(r.Form.Get("username")),
		r.Form.Get("password"))
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			w.WriteHeader(http.StatusConflict)
			s.render(w, r, "index.html", indexPage{Error: "Username already taken. Please choose another one."})
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "index.html", indexPage{Error: "Registration failed: " + err.Error()})
		return
	}

	s.render(w, r, "index.html", indexPage{Notice: "Registration successful. You can log in now."})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "index.html", indexPage{Error: "Invalid request format"})
		return
	}

	user, err := s.authSvc.Login(r.Context(),
		sanitizeInput(r.Form.Get("username")),
		r.Form.Get("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One message for unknown user and wrong password alike.
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "index.html", indexPage{Error: "Invalid credentials. Please try again."})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, "index.html", indexPage{Error: "Login failed"})
		return
	}

	token, err := auth.GenerateToken(auth.SessionUser{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, s.sessionSecret, s.sessionTTL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session token generation failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, "index.html", indexPage{Error: "Login failed"})
		return
	}

	s.setSessionCookie(w, token)
	http.Redirect(w, r, "/menu", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleMenu renders the service menu (page 2).
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "menu.html", struct {
		FirstName string
		LastName  string
	}{user.FirstName, user.LastName})
}
