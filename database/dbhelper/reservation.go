package dbhelper

import (
	"context"

	"github.com/ray-remotestate/toomburg/models"
)

func CreateReservation(ctx context.Context, db SQLExecutor, userID int64, date, time string, guests int) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO reservations (user_id, date, time, guests)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, userID, date, time, guests).Scan(&id)
	return id, err
}

func ListAllReservations(ctx context.Context, db SQLExecutor) ([]models.ReservationView, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.date, r.time, r.guests, r.created_at,
		       u.email, u.first_name, u.last_name
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]models.ReservationView, 0)
	for rows.Next() {
		var r models.ReservationView
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Time, &r.Guests, &r.CreatedAt,
			&r.UserEmail, &r.UserFirstName, &r.UserLastName); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// HasHistory reports whether the user has at least one order or reservation.
func HasHistory(ctx context.Context, db SQLExecutor, userID int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM reservations WHERE user_id = $1)
		    OR EXISTS (SELECT 1 FROM orders WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}
