package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one purchased item. The price paid is not stored.
type Order struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Item      string    `db:"item" json:"item"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type OrderView struct {
	Order
	UserEmail     string `db:"email" json:"user_email"`
	UserFirstName string `db:"first_name" json:"user_first_name"`
	UserLastName  string `db:"last_name" json:"user_last_name"`
}

type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PendingOrder is a cart staged in the session between confirmation and payment.
type PendingOrder struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (p *PendingOrder) ItemNames() []string {
	names := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		names = append(names, item.Name)
	}
	return names
}
