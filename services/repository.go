// Package services implements the restaurant's accounts, ledgers, checkout and admin view.
package services

import (
	"context"

	"github.com/ray-remotestate/toomburg/models"
)

// Repository is the persistence the services need. dbhelper.Repository is the
// Postgres implementation.
type Repository interface {
	CreateUser(ctx context.Context, email, firstName, lastName, hashedPassword string) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateReservation(ctx context.Context, userID int64, date, time string, guests int) (int64, error)
	ListReservations(ctx context.Context) ([]models.ReservationView, error)

	CreateOrders(ctx context.Context, userID int64, items []string) ([]int64, error)
	ListOrders(ctx context.Context) ([]models.OrderView, error)

	HasHistory(ctx context.Context, userID int64) (bool, error)
}
