package http

import (
	"log/slog"
	"net/http"
)

// genericLoginFailure is shown for wrong password and unknown username
// alike; the message must not reveal which one it was.
const genericLoginFailure = "Invalid username or password. Please try again."

// handleLogin serves the login form and establishes sessions.
// Already-authenticated visitors are sent straight to the dashboard.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if token := sessionTokenFromRequest(r); token != "" {
			if _, err := s.sessions.Authenticate(r.Context(), token); err == nil {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
		}
		s.renderLogin(w, r, http.StatusOK, "")
	case http.MethodPost:
		s.login(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderLogin(w, r, http.StatusBadRequest, genericLoginFailure)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	token, err := s.sessions.Login(r.Context(), username, password)
	if err != nil {
		slog.WarnContext(r.Context(), "Login failed", "username", username)
		s.renderLogin(w, r, http.StatusUnauthorized, genericLoginFailure)
		return
	}

	slog.InfoContext(r.Context(), "Login succeeded", "username", username)
	setSessionCookie(w, token, s.sessionTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout revokes the session and sends the user back to login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionTokenFromRequest(r); token != "" {
		if err := s.sessions.Logout(r.Context(), token); err != nil {
			slog.ErrorContext(r.Context(), "Logout failed", "error", err)
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, notice string) {
	data := page{Title: "Sign in"}
	if notice != "" {
		data.Flash = notice
		data.FlashKind = "danger"
	}
	s.render(w, r, status, "login_page", data)
}
