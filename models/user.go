package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Reservation struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Date      string    `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	Guests    int       `db:"guests" json:"guests"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReservationView is a reservation joined to its owner, for the admin dashboard.
type ReservationView struct {
	Reservation
	UserEmail     string `db:"email" json:"user_email"`
	UserFirstName string `db:"first_name" json:"user_first_name"`
	UserLastName  string `db:"last_name" json:"user_last_name"`
}
