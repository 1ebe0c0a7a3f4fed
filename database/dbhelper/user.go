package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/ray-remotestate/toomburg/models"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const uniqueViolation = "23505"

func CreateUser(ctx context.Context, db SQLExecutor, email, firstName, lastName, hashedPassword string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO users (email, first_name, last_name, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, email, firstName, lastName, hashedPassword).Scan(&id)
	if isUniqueViolation(err) {
		return 0, models.ErrDuplicateEmail
	}
	return id, err
}

func IsUserExists(ctx context.Context, db SQLExecutor, email string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// GetUserByEmail returns sql.ErrNoRows when no user has the email.
func GetUserByEmail(ctx context.Context, db SQLExecutor, email string) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, password, created_at
		FROM users
		WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func ListAllUsers(ctx context.Context, db SQLExecutor) ([]models.User, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, email, first_name, last_name, created_at
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
