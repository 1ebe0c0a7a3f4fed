package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ray-remotestate/toomburg/database"
	"github.com/ray-remotestate/toomburg/models"
)

// Repository adapts the query helpers to a single Postgres-backed store.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, email, firstName, lastName, hashedPassword string) (int64, error) {
	id, err := CreateUser(ctx, r.db, email, firstName, lastName, hashedPassword)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := IsUserExists(ctx, r.db, email)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// FindUserByEmail returns nil, nil when no user matches.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := GetUserByEmail(ctx, r.db, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := ListAllUsers(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *Repository) CreateReservation(ctx context.Context, userID int64, date, time string, guests int) (int64, error) {
	id, err := CreateReservation(ctx, r.db, userID, date, time, guests)
	if err != nil {
		return 0, fmt.Errorf("failed to create reservation: %w", err)
	}
	return id, nil
}

// CreateOrders inserts one order row per item in a single transaction.
func (r *Repository) CreateOrders(ctx context.Context, userID int64, items []string) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	err := database.Tx(r.db, func(tx *sql.Tx) error {
		for _, item := range items {
			id, err := CreateOrder(ctx, tx, userID, item)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orders: %w", err)
	}
	return ids, nil
}

func (r *Repository) HasHistory(ctx context.Context, userID int64) (bool, error) {
	ok, err := HasHistory(ctx, r.db, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check history: %w", err)
	}
	return ok, nil
}

func (r *Repository) ListReservations(ctx context.Context) ([]models.ReservationView, error) {
	reservations, err := ListAllReservations(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *Repository) ListOrders(ctx context.Context) ([]models.OrderView, error) {
	orders, err := ListAllOrders(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
