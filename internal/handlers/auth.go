package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"CastingCall/internal/auth"
	"CastingCall/internal/forms"
	"CastingCall/internal/sessions"
)

const msgBadLogin = "Invalid username or password"

func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth.IsAuthenticated(r) {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, "login.html", map[string]any{"Title": "Admin Login", "Form": forms.Result{}})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed form data.")
		return
	}

	in, res := forms.ParseLogin(r.PostForm)
	data := map[string]any{"Title": "Admin Login", "Form": res}
	if !res.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	if _, err := h.auth.Login(r.Context(), w, r, in.Username, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.log.Info("failed login", zap.String("username", in.Username), zap.String("remote_addr", r.RemoteAddr))
			h.render(w, r, http.StatusUnauthorized, "login.html", data,
				sessions.Flash{Kind: sessions.FlashDanger, Message: msgBadLogin})
			return
		}
		h.log.Error("login", zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(w, r); err != nil {
		h.log.Error("logout", zap.Error(err))
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}
