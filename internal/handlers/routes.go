package handlers

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	mw "CastingCall/internal/middleware"
)

// Routes собирает роутер приложения.
func (h *Handler) Routes() (http.Handler, error) {
	static, err := fs.Sub(h.assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := chi.NewRouter()

	// базовые middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(h.log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RedirectSlashes) // /path/ -> /path

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// статика
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/healthz", h.Health)

	// ---------- Публичные страницы ----------
	r.Get("/", h.ShowHome)
	r.Get("/success", h.ShowSuccess)
	for _, path := range []string{"/contact", "/submit"} {
		r.Get(path, h.ShowContactForm)
		r.Post(path, h.SubmitContact)
	}

	// ---------- Вход администратора ----------
	r.Get("/login", h.ShowLogin)
	r.With(mw.RateLimit(h.opts.LoginRateLimit)).Post("/login", h.Login)
	r.Get("/logout", mw.AdminOnlyFunc(h.auth, h.Logout))

	// ---------- Админ-панель ----------
	r.Group(func(g chi.Router) {
		g.Use(mw.AdminOnly(h.auth)) // доступ только с валидной сессией

		g.Get("/admin", h.ListContacts)
		g.Get("/admin/manage", h.ManageAdmins)
		g.Get("/admin/add", h.ShowAddAdmin)
		g.Post("/admin/add", h.AddAdmin)
		g.Get("/admin/delete/{id}", h.DeleteAdmin)
	})

	h.log.Debug("routes registered", zap.Int("login_rate_limit", h.opts.LoginRateLimit))
	return r, nil
}
