package handlers

import (
	"io"
	"net/http"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `{"alive": true}`)
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current(r)
	errMsg, success, ok := h.consumeMessages(w, r, sess)
	if !ok {
		return
	}

	p := h.basePage(sess, "Home")
	p.Error, p.Success = errMsg, success
	h.render(w, http.StatusOK, "home.html", p)
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current(r)

	dashboard, err := h.admin.Dashboard(r.Context(), sess.Identity)
	if isUnauthorized(err) {
		h.AccessDenied(w, r)
		return
	}
	if err != nil {
		h.serverError(w, err, "failed to load dashboard")
		return
	}

	p := h.basePage(sess, "Dashboard")
	p.Data = dashboard
	h.render(w, http.StatusOK, "admin_dashboard.html", p)
}
