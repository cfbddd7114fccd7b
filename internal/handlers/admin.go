package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"CastingCall/internal/auth"
	"CastingCall/internal/db"
	"CastingCall/internal/forms"
	"CastingCall/internal/models"
	"CastingCall/internal/sessions"
)

const (
	msgAdminAdded   = "New admin added successfully!"
	msgAdminDeleted = "Admin deleted successfully"
	msgSelfDelete   = "You cannot delete yourself!"
	msgUsernameUsed = "Username already exists."
)

// current: администратор из контекста; маршруты /admin всегда под RequireAuth.
func current(r *http.Request) *models.Admin {
	admin, _ := auth.AdminFromContext(r.Context())
	return admin
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		h.log.Error("list contacts", zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, "Could not load submissions.")
		return
	}
	h.render(w, r, http.StatusOK, "admin/contacts.html", map[string]any{
		"Title":    "Submissions",
		"Current":  current(r),
		"Contacts": contacts,
	})
}

func (h *Handler) ManageAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context())
	if err != nil {
		h.log.Error("list admins", zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, "Could not load admins.")
		return
	}
	h.render(w, r, http.StatusOK, "admin/manage.html", map[string]any{
		"Title":   "Admins",
		"Current": current(r),
		"Admins":  admins,
	})
}

func (h *Handler) ShowAddAdmin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin/add.html", map[string]any{"Title": "Add Admin", "Form": forms.Result{}})
}

func (h *Handler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed form data.")
		return
	}

	in, res := forms.ParseAdmin(r.PostForm)
	data := map[string]any{"Title": "Add Admin", "Form": res}
	if !res.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "admin/add.html", data,
			sessions.Flash{Kind: sessions.FlashDanger, Message: msgFixErrors})
		return
	}

	hash, err := h.hasher.Hash(in.Password)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, "Could not add admin.")
		return
	}

	admin := &models.Admin{Name: in.Name, Username: in.Username, PasswordHash: hash}
	if _, err := h.admins.Create(r.Context(), admin); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			res.Errors = map[string][]string{"username": {msgUsernameUsed}}
			data["Form"] = res
			h.render(w, r, http.StatusConflict, "admin/add.html", data,
				sessions.Flash{Kind: sessions.FlashDanger, Message: msgUsernameUsed})
			return
		}
		h.log.Error("create admin", zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, "Could not add admin.")
		return
	}

	h.log.Info("admin added",
		zap.Int64("admin_id", admin.ID),
		zap.String("username", admin.Username),
		zap.Int64("by", current(r).ID),
	)
	h.redirectWithFlash(w, r, "/admin/manage", sessions.FlashSuccess, msgAdminAdded, http.StatusSeeOther)
}

func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}

	me := current(r)
	if err := auth.CheckDelete(me, id); err != nil {
		h.redirectWithFlash(w, r, "/admin/manage", sessions.FlashDanger, msgSelfDelete, http.StatusFound)
		return
	}

	switch err := h.admins.Delete(r.Context(), id); {
	case errors.Is(err, db.ErrNotFound):
		h.NotFound(w, r)
		return
	case err != nil:
		h.log.Error("delete admin", zap.Int64("admin_id", id), zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, "Could not delete admin.")
		return
	}

	h.log.Info("admin deleted", zap.Int64("admin_id", id), zap.Int64("by", me.ID))
	h.redirectWithFlash(w, r, "/admin/manage", sessions.FlashSuccess, msgAdminDeleted, http.StatusFound)
}
