package services

import (
	"context"

	"github.com/ray-remotestate/toomburg/models"
	"github.com/ray-remotestate/toomburg/sessions"
)

type Dashboard struct {
	Users        []models.User
	Orders       []models.OrderView
	Reservations []models.ReservationView
}

type AdminViewAggregator struct {
	repo Repository
}

func NewAdminViewAggregator(repo Repository) *AdminViewAggregator {
	return &AdminViewAggregator{repo: repo}
}

// Dashboard reads every ledger. Non-admin identities are refused before any read.
func (a *AdminViewAggregator) Dashboard(ctx context.Context, who sessions.Identity) (*Dashboard, error) {
	if !who.IsAdmin() {
		return nil, ErrUnauthorized
	}

	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := a.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := a.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Users:        users,
		Orders:       orders,
		Reservations: reservations,
	}, nil
}
