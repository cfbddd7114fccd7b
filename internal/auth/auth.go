package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"CastingCall/internal/db"
	"CastingCall/internal/hashing"
	"CastingCall/internal/models"
	"CastingCall/internal/sessions"
)

var (
	// ErrInvalidCredentials: неверный логин или пароль; что именно, не сообщаем.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSelfDelete: администратор пытается удалить собственную учётку.
	ErrSelfDelete = errors.New("you cannot delete yourself")
)

// LoginPath: куда отправляем неавторизованных.
const LoginPath = "/login"

// AdminFinder: то, что нужно аутентификатору от хранилища.
type AdminFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id int64) (*models.Admin, error)
}

type Authenticator struct {
	admins   AdminFinder
	hasher   *hashing.Hasher
	sessions *sessions.Manager
	log      *zap.Logger

	// dummyHash сравниваем, когда логина нет, чтобы время ответа не выдавало его отсутствие
	dummyHash string
}

func New(admins AdminFinder, hasher *hashing.Hasher, sm *sessions.Manager, log *zap.Logger) (*Authenticator, error) {
	dummy, err := hasher.Hash("castingcall-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}
	return &Authenticator{
		admins:    admins,
		hasher:    hasher,
		sessions:  sm,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Login проверяет пару логин/пароль и открывает сессию.
func (a *Authenticator) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, username, password string) (*models.Admin, error) {
	admin, err := a.admins.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, db.ErrNotFound):
		a.hasher.Verify(password, a.dummyHash)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("auth: lookup admin: %w", err)
	}

	if !a.hasher.Verify(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := a.sessions.SetAdminID(w, r, admin.ID); err != nil {
		return nil, fmt.Errorf("auth: save session: %w", err)
	}
	a.log.Info("admin logged in", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
	return admin, nil
}

// Logout закрывает сессию сразу, до ответа клиенту.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := a.sessions.Clear(w, r); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	return nil
}

// CurrentAdmin: администратор текущей сессии. Если в сессии id уже
// удалённой учётки, возвращается ErrNotFound из хранилища.
func (a *Authenticator) CurrentAdmin(r *http.Request) (*models.Admin, error) {
	if admin, ok := AdminFromContext(r.Context()); ok {
		return admin, nil
	}
	id, ok := a.sessions.AdminID(r)
	if !ok {
		return nil, db.ErrNotFound
	}
	return a.admins.FindByID(r.Context(), id)
}

// IsAuthenticated: есть ли в запросе действующая сессия администратора.
func (a *Authenticator) IsAuthenticated(r *http.Request) bool {
	_, err := a.CurrentAdmin(r)
	return err == nil
}

// RequireAuth пропускает дальше только с действующей сессией; иначе
// редирект на вход без каких-либо данных страницы.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, err := a.CurrentAdmin(r)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				a.log.Error("auth: resolve session", zap.Error(err))
			} else if _, had := a.sessions.AdminID(r); had {
				// учётку удалили, пока сессия жила
				_ = a.sessions.Clear(w, r)
			}
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
	})
}

// CheckDelete: нельзя удалить самого себя.
func CheckDelete(current *models.Admin, targetID int64) error {
	if current != nil && current.ID == targetID {
		return ErrSelfDelete
	}
	return nil
}

type ctxKey struct{}

func WithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, ctxKey{}, admin)
}

func AdminFromContext(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(ctxKey{}).(*models.Admin)
	return admin, ok && admin != nil
}
