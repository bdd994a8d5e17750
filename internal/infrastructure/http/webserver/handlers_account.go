package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
)

func (s *WebServer) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", map[string]interface{}{
		"Title":    "Log in - TrackEats",
		"Flash":    s.takeFlash(r),
		"Username": "",
	})
}

func (s *WebServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	err := s.deps.Accounts.Login(r.Context(), currentSession(r).ID, username, r.PostFormValue("password"))
	if err != nil {
		s.render(w, r, errors.HTTPStatus(err), "login", map[string]interface{}{
			"Title":    "Log in - TrackEats",
			"Error":    errors.Message(err),
			"Username": username,
		})
		return
	}
	http.Redirect(w, r, "/recipes", http.StatusSeeOther)
}

func (s *WebServer) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", map[string]interface{}{
		"Title": "Register - TrackEats",
	})
}

func (s *WebServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	req := outbound.RegisterRequest{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if err := s.deps.Accounts.Register(r.Context(), currentSession(r).ID, req); err != nil {
		s.render(w, r, errors.HTTPStatus(err), "register", map[string]interface{}{
			"Title": "Register - TrackEats",
			"Error": errors.Message(err),
			"Form":  req,
		})
		return
	}
	http.Redirect(w, r, "/register/pending", http.StatusSeeOther)
}

func (s *WebServer) handleRegisterPending(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "pending", map[string]interface{}{
		"Title":   "Confirm your email - TrackEats",
		"Pending": currentSession(r).PendingUsername,
	})
}

func (s *WebServer) handleRegisterStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Accounts.ConfirmationStatus(r.Context(), currentSession(r).ID)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(errors.HTTPStatus(err))
		_ = json.NewEncoder(w).Encode(map[string]string{"error": errors.Message(err)})
		return
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (s *WebServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Accounts.Logout(r.Context(), currentSession(r).ID); err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
