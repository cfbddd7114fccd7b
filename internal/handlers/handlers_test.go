package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"CastingCall/internal/auth"
	"CastingCall/internal/bootstrap"
	"CastingCall/internal/db"
	"CastingCall/internal/hashing"
	"CastingCall/internal/sessions"
	"CastingCall/web"
)

var today = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

type app struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	store  *db.Store
}

func newApp(t *testing.T, opts Options) *app {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	store, err := db.Open(ctx, db.Config{URL: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hasher := hashing.NewHasher(bcrypt.MinCost)
	_, err = bootstrap.EnsureFirstAdmin(ctx, store.Admins(), hasher,
		bootstrap.Credentials{Username: "root", Password: "root-password"}, log)
	require.NoError(t, err)

	sm := sessions.NewManager("handlers-test-secret", sessions.Options{MaxAge: time.Hour})
	authn, err := auth.New(store.Admins(), hasher, sm, log)
	require.NoError(t, err)

	h, err := New(Deps{
		Contacts: store.Contacts(),
		Admins:   store.Admins(),
		Health:   store,
		Auth:     authn,
		Sessions: sm,
		Hasher:   hasher,
		Log:      log,
		Assets:   web.FS,
		Now:      func() time.Time { return today },
	}, opts)
	require.NoError(t, err)
	router, err := h.Routes()
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &app{t: t, srv: srv, client: client, store: store}
}

// do выполняет запрос и возвращает код, Location и тело.
func (a *app) do(resp *http.Response, err error) (int, string, string) {
	a.t.Helper()
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func (a *app) get(path string) (int, string, string) {
	a.t.Helper()
	return a.do(a.client.Get(a.srv.URL + path))
}

func (a *app) post(path string, form url.Values) (int, string, string) {
	a.t.Helper()
	return a.do(a.client.PostForm(a.srv.URL+path, form))
}

func (a *app) login(username, password string) int {
	a.t.Helper()
	code, _, _ := a.post("/login", url.Values{"username": {username}, "password": {password}})
	return code
}

func (a *app) contactCount() int {
	a.t.Helper()
	n, err := a.store.Contacts().Count(context.Background())
	require.NoError(a.t, err)
	return n
}

func janeForm() url.Values {
	return url.Values{
		"name":     {"Jane Doe"},
		"email":    {"jane@example.com"},
		"dob":      {"2000-05-01"},
		"category": {"acting"},
		"message":  {"I have done three school plays and one short film."},
	}
}

func TestSubmitContactAndReview(t *testing.T) {
	a := newApp(t, Options{})

	code, loc, _ := a.post("/contact", janeForm())
	assert.Equal(t, http.StatusSeeOther, code)
	assert.Equal(t, "/success", loc)

	code, _, body := a.get("/success")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "SEE YOU IN THE Audition! 🎉")

	// флеш показывается один раз
	_, _, body = a.get("/success")
	assert.NotContains(t, body, "SEE YOU IN THE Audition!")

	assert.Equal(t, 1, a.contactCount())

	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))
	code, _, body = a.get("/admin")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "jane@example.com")
	assert.Contains(t, body, "Acting")
	assert.Contains(t, body, "2000-05-01")
}

func TestSubmitAlias(t *testing.T) {
	a := newApp(t, Options{})

	code, _, _ := a.get("/submit")
	assert.Equal(t, http.StatusOK, code)
	code, loc, _ := a.post("/submit", janeForm())
	assert.Equal(t, http.StatusSeeOther, code)
	assert.Equal(t, "/success", loc)
	assert.Equal(t, 1, a.contactCount())
}

func TestSubmitContactUnderage(t *testing.T) {
	a := newApp(t, Options{})

	form := janeForm()
	form.Set("dob", "2010-01-01")
	code, _, body := a.post("/contact", form)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "You must be at least 18 years old to participate.")
	// введённые данные сохраняются в форме
	assert.Contains(t, body, "jane@example.com")
	assert.Zero(t, a.contactCount())
}

func TestSubmitContactEighteenToday(t *testing.T) {
	a := newApp(t, Options{})

	form := janeForm()
	form.Set("dob", "2008-10-17")
	code, _, _ := a.post("/contact", form)
	assert.Equal(t, http.StatusSeeOther, code)

	form.Set("dob", "2008-10-18")
	code, _, _ = a.post("/contact", form)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, 1, a.contactCount())
}

func TestSubmitContactInvalid(t *testing.T) {
	cases := map[string]func(url.Values){
		"bad email":        func(v url.Values) { v.Set("email", "not-an-email") },
		"missing name":     func(v url.Values) { v.Set("name", "  ") },
		"unknown category": func(v url.Values) { v.Set("category", "juggling") },
		"bad date":         func(v url.Values) { v.Set("dob", "01/05/2000") },
		"future date":      func(v url.Values) { v.Set("dob", "2030-01-01") },
		"no message":       func(v url.Values) { v.Del("message") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := newApp(t, Options{})
			form := janeForm()
			mutate(form)

			code, _, body := a.post("/contact", form)
			assert.Equal(t, http.StatusUnprocessableEntity, code)
			assert.Contains(t, body, "Please correct the errors in the form.")
			assert.Zero(t, a.contactCount())
		})
	}
}

func TestAdminPagesRequireLogin(t *testing.T) {
	a := newApp(t, Options{})

	for _, path := range []string{"/admin", "/admin/manage", "/admin/add", "/admin/delete/1", "/logout"} {
		code, loc, body := a.get(path)
		assert.Equal(t, http.StatusFound, code, path)
		assert.Equal(t, "/login", loc, path)
		assert.NotContains(t, body, "root", path)
	}

	code, loc, _ := a.post("/admin/add", url.Values{"name": {"X"}})
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)
}

func TestLoginWrongPasswordThreeTimes(t *testing.T) {
	a := newApp(t, Options{})

	for i := 0; i < 3; i++ {
		code, _, body := a.post("/login", url.Values{"username": {"root"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Contains(t, body, "Invalid username or password")
		// логин остаётся в форме
		assert.Contains(t, body, `value="root"`)
	}
	code, _, _ := a.get("/admin")
	assert.Equal(t, http.StatusFound, code)

	// блокировки нет
	assert.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))
	code, _, _ = a.get("/admin")
	assert.Equal(t, http.StatusOK, code)
}

func TestLoginUnknownUser(t *testing.T) {
	a := newApp(t, Options{})

	code, _, body := a.post("/login", url.Values{"username": {"ghost"}, "password": {"root-password"}})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, body, "Invalid username or password")
}

func TestLoginEmptyForm(t *testing.T) {
	a := newApp(t, Options{})

	code, _, body := a.post("/login", url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "field-error")
}

func TestLoginPageRedirectsWhenLoggedIn(t *testing.T) {
	a := newApp(t, Options{})

	code, _, _ := a.get("/login")
	assert.Equal(t, http.StatusOK, code)

	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))
	code, loc, _ := a.get("/login")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/admin", loc)
}

func TestLogout(t *testing.T) {
	a := newApp(t, Options{})
	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

	code, loc, _ := a.get("/logout")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)

	code, loc, _ = a.get("/admin")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)
}

func TestAddAdmin(t *testing.T) {
	a := newApp(t, Options{})
	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

	form := url.Values{
		"name":             {"Casting Director"},
		"username":         {"director"},
		"password":         {"director-pass"},
		"confirm_password": {"director-pass"},
	}
	code, loc, _ := a.post("/admin/add", form)
	assert.Equal(t, http.StatusSeeOther, code)
	assert.Equal(t, "/admin/manage", loc)

	code, _, body := a.get("/admin/manage")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "New admin added successfully!")
	assert.Contains(t, body, "director")

	// дубликат логина
	code, _, body = a.post("/admin/add", form)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body, "Username already exists.")

	n, err := a.store.Admins().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// новый администратор может войти
	other := newClient(t, a)
	code, _, _ = other.post("/login", url.Values{"username": {"director"}, "password": {"director-pass"}})
	assert.Equal(t, http.StatusSeeOther, code)
}

func TestAddAdminInvalid(t *testing.T) {
	a := newApp(t, Options{})
	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

	code, _, body := a.post("/admin/add", url.Values{
		"name":             {"Casting Director"},
		"username":         {"director"},
		"password":         {"director-pass"},
		"confirm_password": {"different-pass"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "Please correct the errors in the form.")

	n, err := a.store.Admins().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteAdmin(t *testing.T) {
	a := newApp(t, Options{})
	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

	root, err := a.store.Admins().FindByUsername(context.Background(), "root")
	require.NoError(t, err)

	// себя удалить нельзя
	code, loc, _ := a.get("/admin/delete/" + itoa(root.ID))
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/admin/manage", loc)
	_, _, body := a.get("/admin/manage")
	assert.Contains(t, body, "You cannot delete yourself!")
	_, err = a.store.Admins().FindByID(context.Background(), root.ID)
	assert.NoError(t, err)

	code, _, _ = a.post("/admin/add", url.Values{
		"name":             {"Temp"},
		"username":         {"temp"},
		"password":         {"temp-password"},
		"confirm_password": {"temp-password"},
	})
	require.Equal(t, http.StatusSeeOther, code)
	temp, err := a.store.Admins().FindByUsername(context.Background(), "temp")
	require.NoError(t, err)

	code, loc, _ = a.get("/admin/delete/" + itoa(temp.ID))
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/admin/manage", loc)
	_, _, body = a.get("/admin/manage")
	assert.Contains(t, body, "Admin deleted successfully")
	_, err = a.store.Admins().FindByID(context.Background(), temp.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	// уже удалён, несуществующий и некорректный id
	for _, id := range []string{itoa(temp.ID), "9999", "abc", "0"} {
		code, _, _ = a.get("/admin/delete/" + id)
		assert.Equal(t, http.StatusNotFound, code, id)
	}
}

func TestDeletedAdminSessionRejected(t *testing.T) {
	a := newApp(t, Options{})
	require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

	root, err := a.store.Admins().FindByUsername(context.Background(), "root")
	require.NoError(t, err)
	require.NoError(t, a.store.Admins().Delete(context.Background(), root.ID))

	code, loc, _ := a.get("/admin")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)
}

func TestAdminContactPolicy(t *testing.T) {
	t.Run("blocked by default", func(t *testing.T) {
		a := newApp(t, Options{})
		require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

		code, loc, _ := a.post("/contact", janeForm())
		assert.Equal(t, http.StatusFound, code)
		assert.Equal(t, "/", loc)
		assert.Zero(t, a.contactCount())

		_, _, body := a.get("/")
		assert.Contains(t, body, "Admins cannot submit contact form.")
	})

	t.Run("allowed", func(t *testing.T) {
		a := newApp(t, Options{AllowAdminContact: true})
		require.Equal(t, http.StatusSeeOther, a.login("root", "root-password"))

		code, _, _ := a.get("/contact")
		assert.Equal(t, http.StatusOK, code)
		code, _, _ = a.post("/contact", janeForm())
		assert.Equal(t, http.StatusSeeOther, code)
		assert.Equal(t, 1, a.contactCount())
	})
}

func TestLoginRateLimit(t *testing.T) {
	a := newApp(t, Options{LoginRateLimit: 2})

	assert.Equal(t, http.StatusUnauthorized, a.login("root", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, a.login("root", "wrong"))
	assert.Equal(t, http.StatusTooManyRequests, a.login("root", "root-password"))

	// GET /login не ограничивается
	code, _, _ := a.get("/login")
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthAndStatic(t *testing.T) {
	a := newApp(t, Options{})

	code, _, body := a.get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, _, body = a.get("/static/script.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "delete-admin")

	code, _, body = a.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "Page not found.")
}

func TestHomePage(t *testing.T) {
	a := newApp(t, Options{})

	code, _, body := a.get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `href="/contact"`)
	assert.Contains(t, body, "2026")
}

// newClient: второй браузер со своей корзиной кук.
func newClient(t *testing.T, a *app) *app {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := *a
	c.client = &http.Client{
		Jar:           jar,
		CheckRedirect: a.client.CheckRedirect,
	}
	return &c
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
