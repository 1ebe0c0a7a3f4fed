package handlers

import (
	"errors"
	"net/http"

	"github.com/ray-remotestate/toomburg/services"
	"github.com/ray-remotestate/toomburg/sessions"
)

func (h *Handler) basePage(sess *sessions.Session, title string) page {
	return page{
		Title:    title,
		Name:     sess.DisplayName,
		LoggedIn: sess.Identity.IsAuthenticated(),
		IsAdmin:  sess.Identity.IsAdmin(),
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current(r)

	if r.Method != http.MethodPost {
		errMsg, _, ok := h.consumeMessages(w, r, sess)
		if !ok {
			return
		}
		p := h.basePage(sess, "Log in")
		p.Error = errMsg
		h.render(w, http.StatusOK, "login.html", p)
		return
	}

	if !h.parseForm(w, r) {
		return
	}
	email := r.PostFormValue("email")

	v, err := h.verifier.Verify(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		h.serverError(w, err, "failed to verify credentials")
		return
	}
	h.metrics.RecordLogin(v.Outcome.String())

	switch v.Outcome {
	case services.OutcomeAdmin, services.OutcomeUser:
		next, err := services.NewLoginSession(r.Context(), h.ledger, v)
		if err != nil {
			h.serverError(w, err, "failed to build login session")
			return
		}
		if err := h.sessions.Start(w, r, next); err != nil {
			h.serverError(w, err, "failed to start session")
			return
		}
		http.Redirect(w, r, "/home", http.StatusSeeOther)
	case services.OutcomeUnauthenticated:
		msg := msgIncorrectPassword
		if h.verifier.IsAdministrative(email) {
			msg = msgIncorrectAdminPassword
		}
		h.redirectWithError(w, r, sess, "/", msg)
	default:
		h.redirectWithError(w, r, sess, "/register", msgEmailNotFound)
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current(r)

	if r.Method != http.MethodPost {
		errMsg, _, ok := h.consumeMessages(w, r, sess)
		if !ok {
			return
		}
		p := h.basePage(sess, "Register")
		p.Error = errMsg
		h.render(w, http.StatusOK, "register.html", p)
		return
	}

	if !h.parseForm(w, r) {
		return
	}
	firstName := r.PostFormValue("first_name")

	userID, err := h.directory.Register(r.Context(), services.Registration{
		Email:     r.PostFormValue("email"),
		FirstName: firstName,
		LastName:  r.PostFormValue("last_name"),
		Password:  r.PostFormValue("password"),
		Confirm:   r.PostFormValue("confirm"),
	})
	switch {
	case errors.Is(err, services.ErrPasswordMismatch):
		h.metrics.RecordRegistration("password_mismatch")
		h.redirectWithError(w, r, sess, "/register", msgPasswordMismatch)
		return
	case errors.Is(err, services.ErrEmailTaken):
		h.metrics.RecordRegistration("email_taken")
		h.redirectWithError(w, r, sess, "/", msgEmailTaken)
		return
	case err != nil:
		h.serverError(w, err, "failed to register user")
		return
	}
	h.metrics.RecordRegistration("created")

	next := &sessions.Session{
		Identity:    sessions.CustomerIdentity(userID),
		DisplayName: firstName,
		Success:     msgRegistered,
	}
	if err := h.sessions.Start(w, r, next); err != nil {
		h.serverError(w, err, "failed to start session")
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		h.serverError(w, err, "failed to destroy session")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
