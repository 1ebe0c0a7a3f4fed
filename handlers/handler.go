package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/toomburg/metrics"
	"github.com/ray-remotestate/toomburg/middlewares"
	"github.com/ray-remotestate/toomburg/services"
	"github.com/ray-remotestate/toomburg/sessions"
)

// One-shot messages shown on the next rendered page.
const (
	msgIncorrectAdminPassword = "Incorrect admin password"
	msgIncorrectPassword      = "Incorrect password"
	msgEmailNotFound          = "Email not found. Please register"
	msgPasswordMismatch       = "Passwords do not match"
	msgEmailTaken             = "Email already exists. Please log in"
	msgRegistered             = "Registration successful!"
	msgLoginRequired          = "Please login first"
	msgNoItems                = "No items selected!"
	msgMalformedItem          = "Invalid item selection"
	msgNoOrder                = "No order to process"
	msgInvalidCard            = "Invalid card number (must be 16 digits)"
	msgOrderConfirmed         = "Thank you for your trust! Your order is confirmed."
	msgMalformedReservation   = "Please enter a valid number of guests"
	msgReserved               = "Reservation successful!"
	msgAccessDenied           = "Access denied"
)

type Handler struct {
	sessions  *middlewares.SessionManager
	verifier  *services.CredentialVerifier
	directory *services.UserDirectory
	ledger    *services.Ledger
	checkout  *services.Checkout
	admin     *services.AdminViewAggregator
	metrics   *metrics.Collector
	views     *views
}

type Deps struct {
	Sessions  *middlewares.SessionManager
	Verifier  *services.CredentialVerifier
	Directory *services.UserDirectory
	Ledger    *services.Ledger
	Checkout  *services.Checkout
	Admin     *services.AdminViewAggregator
	Metrics   *metrics.Collector
}

func New(d Deps) (*Handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		sessions:  d.Sessions,
		verifier:  d.Verifier,
		directory: d.Directory,
		ledger:    d.Ledger,
		checkout:  d.Checkout,
		admin:     d.Admin,
		metrics:   d.Metrics,
		views:     v,
	}, nil
}

// redirectWithError stores msg on the session and redirects to path.
func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, sess *sessions.Session, path, msg string) {
	sess.Error = msg
	h.persistAndRedirect(w, r, sess, path)
}

func (h *Handler) persistAndRedirect(w http.ResponseWriter, r *http.Request, sess *sessions.Session, path string) {
	if err := h.sessions.Persist(w, r, sess); err != nil {
		h.serverError(w, err, "failed to save session")
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// consumeMessages pops the one-shot messages and saves the session when any were present.
func (h *Handler) consumeMessages(w http.ResponseWriter, r *http.Request, sess *sessions.Session) (errMsg, success string, ok bool) {
	errMsg, success = sess.PopError(), sess.PopSuccess()
	if (errMsg != "" || success != "") && sess.ID != "" {
		if err := h.sessions.Persist(w, r, sess); err != nil {
			h.serverError(w, err, "failed to save session")
			return "", "", false
		}
	}
	return errMsg, success, true
}

func (h *Handler) serverError(w http.ResponseWriter, err error, msg string) {
	logrus.WithError(err).Error(msg)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

// LoginRequired is the denial handler for customer-only routes.
func (h *Handler) LoginRequired(w http.ResponseWriter, r *http.Request) {
	h.redirectWithError(w, r, h.sessions.Current(r), "/", msgLoginRequired)
}

// AccessDenied is the denial handler for admin-only routes.
func (h *Handler) AccessDenied(w http.ResponseWriter, r *http.Request) {
	h.redirectWithError(w, r, h.sessions.Current(r), "/home", msgAccessDenied)
}

func isUnauthorized(err error) bool {
	return errors.Is(err, services.ErrUnauthorized)
}
