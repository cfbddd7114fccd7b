package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"CastingCall/internal/forms"
	"CastingCall/internal/models"
	"CastingCall/internal/sessions"
)

const (
	msgSubmitted     = "SEE YOU IN THE Audition! 🎉"
	msgAdminContact  = "Admins cannot submit contact form."
	msgFixErrors     = "Please correct the errors in the form."
	msgSubmitFailed  = "Error submitting form!"
	msgUnderage      = "You must be at least 18 years old to participate."
	contactPageTitle = "Audition Application"
)

func (h *Handler) ShowHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home.html", map[string]any{"Title": "Home"})
}

func (h *Handler) ShowSuccess(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "success.html", map[string]any{"Title": "Thank you"})
}

// adminBlocked: вошедшим администраторам форма недоступна, если это не разрешено.
func (h *Handler) adminBlocked(w http.ResponseWriter, r *http.Request) bool {
	if h.opts.AllowAdminContact || !h.auth.IsAuthenticated(r) {
		return false
	}
	h.redirectWithFlash(w, r, "/", sessions.FlashWarning, msgAdminContact, http.StatusFound)
	return true
}

func (h *Handler) contactData(form forms.Result) map[string]any {
	return map[string]any{
		"Title":      contactPageTitle,
		"Form":       form,
		"Categories": models.Categories,
	}
}

func (h *Handler) ShowContactForm(w http.ResponseWriter, r *http.Request) {
	if h.adminBlocked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, "contact.html", h.contactData(forms.Result{}))
}

// SubmitContact принимает заявку.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if h.adminBlocked(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed form data.")
		return
	}

	today := h.now()
	in, res := forms.ParseContact(r.PostForm, today)
	if !res.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "contact.html", h.contactData(res),
			sessions.Flash{Kind: sessions.FlashDanger, Message: msgFixErrors})
		return
	}

	if err := forms.CheckAdult(in.DateOfBirth, today); errors.Is(err, forms.ErrUnderage) {
		h.render(w, r, http.StatusUnprocessableEntity, "contact.html", h.contactData(res),
			sessions.Flash{Kind: sessions.FlashWarning, Message: msgUnderage})
		return
	}

	contact := in.Contact()
	if _, err := h.contacts.Create(r.Context(), contact); err != nil {
		h.log.Error("save contact", zap.Error(err))
		h.render(w, r, http.StatusInternalServerError, "contact.html", h.contactData(res),
			sessions.Flash{Kind: sessions.FlashDanger, Message: msgSubmitFailed})
		return
	}

	h.log.Info("contact submitted", zap.Int64("contact_id", contact.ID), zap.String("category", string(contact.Category)))
	h.redirectWithFlash(w, r, "/success", sessions.FlashSuccess, msgSubmitted, http.StatusSeeOther)
}
