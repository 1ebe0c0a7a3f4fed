package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/toomburg/models"
	"github.com/ray-remotestate/toomburg/services"
)

var menu = []models.LineItem{
	{Name: "Toomburg Classic", Price: decimal.RequireFromString("8.50")},
	{Name: "Double Smash", Price: decimal.RequireFromString("11.00")},
	{Name: "Crispy Chicken", Price: decimal.RequireFromString("9.25")},
	{Name: "Veggie Burger", Price: decimal.RequireFromString("8.75")},
	{Name: "Fries", Price: decimal.RequireFromString("3.50")},
	{Name: "Onion Rings", Price: decimal.RequireFromString("4.00")},
	{Name: "Milkshake", Price: decimal.RequireFromString("5.25")},
	{Name: "Soft Drink", Price: decimal.RequireFromString("2.00")},
}

type orderPage struct {
	Discount bool
	Menu     []models.LineItem
}

func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		// keep the method and body so the selection reaches confirmation
		http.Redirect(w, r, "/confirm_order", http.StatusTemporaryRedirect)
		return
	}

	sess := h.sessions.Current(r)
	errMsg, _, ok := h.consumeMessages(w, r, sess)
	if !ok {
		return
	}
	p := h.basePage(sess, "Order")
	p.Error = errMsg
	p.Data = orderPage{Discount: sess.Discount, Menu: menu}
	h.render(w, http.StatusOK, "order.html", p)
}

// ConfirmOrder stages the selected items (POST) or shows the staged order again (GET).
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current(r)

	if r.Method != http.MethodPost {
		if sess.Pending == nil {
			http.Redirect(w, r, "/order", http.StatusSeeOther)
			return
		}
		errMsg, _, ok := h.consumeMessages(w, r, sess)
		if !ok {
			return
		}
		p := h.basePage(sess, "Confirm order")
		p.Error = errMsg
		p.Data = sess.Pending
		h.render(w, http.StatusOK, "confirm_order.html", p)
		return
	}

	if !h.parseForm(w, r) {
		return
	}
	pending, err := h.checkout.SelectItems(sess, r.PostForm["items"])
	switch {
	case isUnauthorized(err):
		h.redirectWithError(w, r, sess, "/", msgLoginRequired)
		return
	case errors.Is(err, services.ErrNoItemsSelected):
		h.redirectWithError(w, r, sess, "/order", msgNoItems)
		return
	case errors.Is(err, services.ErrMalformedItem):
		h.redirectWithError(w, r, sess, "/order", msgMalformedItem)
		return
	case err != nil:
		h.serverError(w, err, "failed to stage order")
		return
	}

	if err := h.sessions.Persist(w, r, sess); err != nil {
		h.serverError(w, err, "failed to save session")
		return
	}
	p := h.basePage(sess, "Confirm order")
	p.Data = pending
	h.render(w, http.StatusOK, "confirm_order.html", p)
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	sess := h.sessions.Current(r)

	ids, err := h.checkout.CommitPayment(r.Context(), sess, r.PostFormValue("card_number"))
	switch {
	case errors.Is(err, services.ErrNoPendingOrder):
		h.redirectWithError(w, r, sess, "/home", msgNoOrder)
		return
	case errors.Is(err, services.ErrInvalidCard):
		h.metrics.RecordPaymentFailure("invalid_card")
		logrus.WithField("user_id", sess.Identity.UserID).Warn("payment rejected: invalid card number")
		h.redirectWithError(w, r, sess, "/confirm_order", msgInvalidCard)
		return
	case isUnauthorized(err):
		h.redirectWithError(w, r, sess, "/", msgLoginRequired)
		return
	case err != nil:
		h.metrics.RecordPaymentFailure("storage")
		h.serverError(w, err, "failed to commit orders")
		return
	}

	h.metrics.RecordOrderCommitted(len(ids))
	logrus.WithFields(logrus.Fields{
		"user_id": sess.Identity.UserID,
		"items":   len(ids),
	}).Info("order committed")

	sess.Success = msgOrderConfirmed
	h.persistAndRedirect(w, r, sess, "/home")
}
