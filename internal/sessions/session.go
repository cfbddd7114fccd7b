package sessions

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "admin_session"
	adminIDKey  = "admin_id"
)

// Типы флеш-сообщений, они же CSS-классы в шаблонах.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash: одноразовое сообщение для следующей отрисованной страницы.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	// securecookie сериализует Values через gob
	gob.Register(Flash{})
}

// Options: параметры куки.
type Options struct {
	MaxAge time.Duration
	Secure bool
}

// Manager хранит сессию администратора в подписанной и зашифрованной куке.
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string, opts Options) *Manager {
	// Два ключа: подпись + шифрование.
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))

	store := sessions.NewCookieStore(h[:], e[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	}
	store.MaxAge(store.Options.MaxAge)
	return &Manager{store: store}
}

// get не падает на битой или чужой куке: store.Get в этом случае
// всё равно возвращает пустую сессию (и кэширует её на время запроса).
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, sessionName)
	return s
}

func (m *Manager) SetAdminID(w http.ResponseWriter, r *http.Request, adminID int64) error {
	s := m.get(r)
	s.Values[adminIDKey] = adminID
	return s.Save(r, w)
}

func (m *Manager) AdminID(r *http.Request) (int64, bool) {
	v, ok := m.get(r).Values[adminIDKey].(int64)
	return v, ok
}

// Clear удаляет сессию целиком: кука истекает немедленно.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	s.Values = map[interface{}]interface{}{}
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

// AddFlash кладёт сообщение в сессию и сразу сохраняет куку.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	s := m.get(r)
	s.AddFlash(Flash{Kind: kind, Message: msg})
	return s.Save(r, w)
}

// Flashes забирает накопленные сообщения; повторный вызов вернёт пусто.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.get(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			out = append(out, fl)
		}
	}
	_ = s.Save(r, w)
	return out
}
