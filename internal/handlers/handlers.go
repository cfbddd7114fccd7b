package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"CastingCall/internal/auth"
	"CastingCall/internal/hashing"
	"CastingCall/internal/models"
	"CastingCall/internal/sessions"
)

// ContactRepo: хранилище заявок.
type ContactRepo interface {
	Create(ctx context.Context, c *models.Contact) (int64, error)
	List(ctx context.Context) ([]models.Contact, error)
}

// AdminRepo: хранилище администраторов.
type AdminRepo interface {
	Create(ctx context.Context, a *models.Admin) (int64, error)
	List(ctx context.Context) ([]models.Admin, error)
	Delete(ctx context.Context, id int64) error
}

// Pinger: проверка БД для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options: поведение, которое задаётся конфигурацией.
type Options struct {
	// AllowAdminContact: может ли вошедший администратор отправлять форму заявки.
	AllowAdminContact bool
	// LoginRateLimit: POST /login в минуту с одного IP; 0 отключает лимит.
	LoginRateLimit int
}

// Handler: все страницы приложения. Зависимости передаются явно.
type Handler struct {
	contacts ContactRepo
	admins   AdminRepo
	health   Pinger
	auth     *auth.Authenticator
	sessions *sessions.Manager
	hasher   *hashing.Hasher
	log      *zap.Logger
	opts     Options

	pages  map[string]*template.Template
	assets fs.FS
	now    func() time.Time
}

// Deps: то, из чего собирается Handler.
type Deps struct {
	Contacts ContactRepo
	Admins   AdminRepo
	Health   Pinger
	Auth     *auth.Authenticator
	Sessions *sessions.Manager
	Hasher   *hashing.Hasher
	Log      *zap.Logger
	// Assets: templates/ и static/ (обычно web.FS).
	Assets fs.FS
	// Now: часы для проверки возраста; по умолчанию time.Now.
	Now func() time.Time
}

var pageFiles = []string{
	"home.html",
	"contact.html",
	"success.html",
	"login.html",
	"error.html",
	"admin/contacts.html",
	"admin/manage.html",
	"admin/add.html",
}

func New(d Deps, opts Options) (*Handler, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, p := range pageFiles {
		t, err := template.ParseFS(d.Assets, "templates/base.html", "templates/"+p)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		pages[p] = t
	}

	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		contacts: d.Contacts,
		admins:   d.Admins,
		health:   d.Health,
		auth:     d.Auth,
		sessions: d.Sessions,
		hasher:   d.Hasher,
		log:      d.Log,
		opts:     opts,
		pages:    pages,
		assets:   d.Assets,
		now:      now,
	}, nil
}

// render прокидывает в шаблон IsAdmin, Year и флеш-сообщения.
// notices показываются сразу, вместе с накопленными в сессии.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any, notices ...sessions.Flash) {
	if data == nil {
		data = map[string]any{}
	}
	data["IsAdmin"] = h.auth.IsAuthenticated(r)
	data["Year"] = h.now().Year()
	data["Flashes"] = append(h.sessions.Flashes(w, r), notices...)

	tmpl, ok := h.pages[page]
	if !ok {
		h.log.Error("unknown template", zap.String("page", page))
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	// сначала в буфер: ошибка шаблона не должна оставить полстраницы
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.log.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError: страница ошибки с кодом статуса.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": msg,
	})
}

// redirectWithFlash: флеш в сессию и редирект.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, kind, msg string, code int) {
	if err := h.sessions.AddFlash(w, r, kind, msg); err != nil {
		h.log.Warn("save flash", zap.Error(err))
	}
	http.Redirect(w, r, url, code)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found.")
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
}

// Health: 200, если БД отвечает.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.health.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("db unavailable"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}
