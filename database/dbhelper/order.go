package dbhelper

import (
	"context"

	"github.com/ray-remotestate/toomburg/models"
)

func CreateOrder(ctx context.Context, db SQLExecutor, userID int64, item string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, item)
		VALUES ($1, $2)
		RETURNING id`, userID, item).Scan(&id)
	return id, err
}

func ListAllOrders(ctx context.Context, db SQLExecutor) ([]models.OrderView, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT o.id, o.user_id, o.item, o.created_at,
		       u.email, u.first_name, u.last_name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]models.OrderView, 0)
	for rows.Next() {
		var o models.OrderView
		if err := rows.Scan(&o.ID, &o.UserID, &o.Item, &o.CreatedAt,
			&o.UserEmail, &o.UserFirstName, &o.UserLastName); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
