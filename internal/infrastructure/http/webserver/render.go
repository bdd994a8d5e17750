package webserver

import (
	"bytes"
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = []string{
	"login", "register", "pending",
	"foods", "food_form",
	"recipes", "draft",
	"error",
}

// templates holds one parsed set per page, each combined with the layout
type templates struct {
	pages map[string]*template.Template
}

func parseTemplates() (*templates, error) {
	funcs := template.FuncMap{
		"quantity": nutrition.FormatQuantity,
		"money": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
		"round": func(v float64) string {
			return strconv.FormatFloat(nutrition.Round(v, 1), 'f', -1, 64)
		},
	}

	t := &templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

func (s *WebServer) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	if data["Title"] == nil {
		data["Title"] = "TrackEats"
	}
	sess := currentSession(r)
	data["CurrentUser"] = sess.Username
	data["LoggedIn"] = sess.AccessToken != ""

	tmpl, ok := s.templates.pages[page]
	if !ok {
		s.logger.Error("Unknown template", zap.String("template", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("Failed to execute template", zap.String("template", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail reports err on page. A rejected token sends the user to the login
// page, where the flash left by the invalidation explains why.
func (s *WebServer) fail(w http.ResponseWriter, r *http.Request, err error, page string, data map[string]interface{}) {
	if errors.Is(err, errors.CodeUnauthorized) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["Error"] = errors.Message(err)
	s.render(w, r, status, page, data)
}

// takeFlash pops the session's flash message
func (s *WebServer) takeFlash(r *http.Request) string {
	var msg string
	_, err := s.deps.Sessions.Update(r.Context(), currentSession(r).ID, func(sess *session.Session) error {
		msg = sess.TakeFlash()
		return nil
	})
	if err != nil && !stderrors.Is(err, session.ErrNotFound) {
		s.logger.Warn("Failed to read flash", zap.Error(err))
	}
	return msg
}

// setFlash stores a message shown by the next page that reads it
func (s *WebServer) setFlash(r *http.Request, msg string) {
	_, err := s.deps.Sessions.Update(r.Context(), currentSession(r).ID, func(sess *session.Session) error {
		sess.Flash = msg
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to store flash", zap.Error(err))
	}
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, errors.NewAppError(errors.CodeBadRequest, "Invalid id", chi.URLParam(r, name))
	}
	return id, nil
}
