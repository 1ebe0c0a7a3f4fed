package handlers

import (
	"errors"
	"net/http"

	"github.com/ray-remotestate/toomburg/services"
)

type reservePage struct {
	Discount bool
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current(r)

	if r.Method != http.MethodPost {
		errMsg, _, ok := h.consumeMessages(w, r, sess)
		if !ok {
			return
		}
		p := h.basePage(sess, "Reserve")
		p.Error = errMsg
		p.Data = reservePage{Discount: sess.Discount}
		h.render(w, http.StatusOK, "reserve.html", p)
		return
	}

	if !h.parseForm(w, r) {
		return
	}
	_, err := h.ledger.AddReservation(r.Context(), sess.Identity, services.ReservationRequest{
		Date:   r.PostFormValue("date"),
		Time:   r.PostFormValue("time"),
		Guests: r.PostFormValue("guests"),
	})
	switch {
	case isUnauthorized(err):
		h.redirectWithError(w, r, sess, "/", msgLoginRequired)
		return
	case errors.Is(err, services.ErrMalformedReservation):
		h.redirectWithError(w, r, sess, "/reserve", msgMalformedReservation)
		return
	case err != nil:
		h.serverError(w, err, "failed to create reservation")
		return
	}
	h.metrics.RecordReservation()

	sess.Success = msgReserved
	h.persistAndRedirect(w, r, sess, "/home")
}
