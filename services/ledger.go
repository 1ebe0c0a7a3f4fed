package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/ray-remotestate/toomburg/sessions"
)

type ReservationRequest struct {
	Date   string
	Time   string
	Guests string
}

// Ledger records reservations and orders. Rows are never updated or deleted.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// AddReservation books a table. Date and time are stored as given.
func (l *Ledger) AddReservation(ctx context.Context, who sessions.Identity, req ReservationRequest) (int64, error) {
	if !who.IsCustomer() {
		return 0, ErrUnauthorized
	}
	// guests is an INTEGER column
	guests, err := strconv.ParseInt(strings.TrimSpace(req.Guests), 10, 32)
	if err != nil {
		return 0, ErrMalformedReservation
	}
	return l.repo.CreateReservation(ctx, who.UserID, req.Date, req.Time, int(guests))
}

func (l *Ledger) AddOrder(ctx context.Context, userID int64, item string) (int64, error) {
	ids, err := l.repo.CreateOrders(ctx, userID, []string{item})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AddOrders appends one order row per item, all or nothing.
func (l *Ledger) AddOrders(ctx context.Context, userID int64, items []string) ([]int64, error) {
	return l.repo.CreateOrders(ctx, userID, items)
}

func (l *Ledger) HasHistory(ctx context.Context, userID int64) (bool, error) {
	return l.repo.HasHistory(ctx, userID)
}
