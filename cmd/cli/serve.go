package cli

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"CastingCall/internal/auth"
	"CastingCall/internal/handlers"
	"CastingCall/internal/hashing"
	"CastingCall/internal/server"
	"CastingCall/internal/sessions"
	"CastingCall/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	// без администратора сервер не стартует
	if _, err := ensureAdmin(ctx, e); err != nil {
		return err
	}

	handler, err := buildHandler(e)
	if err != nil {
		return err
	}

	if !e.cfg.CookieSecure && e.cfg.IsProduction() {
		e.log.Warn("COOKIE_SECURE is off in production; session cookies will be sent over plain HTTP")
	}
	e.log.Info("starting castingcall",
		zap.String("env", e.cfg.Env),
		zap.String("addr", e.cfg.Addr()),
		zap.Bool("allow_admin_contact", e.cfg.AllowAdminContact),
	)
	return server.New(server.DefaultConfig(e.cfg.Addr()), handler, e.log).Run(ctx)
}

func buildHandler(e *env) (http.Handler, error) {
	hasher := hashing.NewHasher(e.cfg.BcryptCost)
	sm := sessions.NewManager(e.cfg.SecretKey, sessions.Options{
		MaxAge: e.cfg.SessionMaxAge,
		Secure: e.cfg.CookieSecure,
	})
	authn, err := auth.New(e.store.Admins(), hasher, sm, e.log.Named("auth"))
	if err != nil {
		return nil, err
	}

	app, err := handlers.New(handlers.Deps{
		Contacts: e.store.Contacts(),
		Admins:   e.store.Admins(),
		Health:   e.store,
		Auth:     authn,
		Sessions: sm,
		Hasher:   hasher,
		Log:      e.log,
		Assets:   web.FS,
	}, handlers.Options{
		AllowAdminContact: e.cfg.AllowAdminContact,
		LoginRateLimit:    e.cfg.LoginRateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("init handlers: %w", err)
	}
	return app.Routes()
}
