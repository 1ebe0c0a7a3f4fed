// Package servicetest provides an in-memory services.Repository for tests.
package servicetest

import (
	"context"
	"sync"
	"time"

	"github.com/ray-remotestate/toomburg/models"
)

type MemoryRepository struct {
	mu           sync.Mutex
	users        []models.User
	reservations []models.Reservation
	orders       []models.Order

	// Err, when set, is returned by every call.
	Err error
	// Reads counts list calls, so tests can assert nothing was read.
	Reads int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) CreateUser(_ context.Context, email, firstName, lastName, hashedPassword string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	for _, u := range m.users {
		if u.Email == email {
			return 0, models.ErrDuplicateEmail
		}
	}
	u := models.User{
		ID:        int64(len(m.users) + 1),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}
	m.users = append(m.users, u)
	return u.ID, nil
}

func (m *MemoryRepository) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}

	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.User(nil), m.users...), nil
}

func (m *MemoryRepository) CreateReservation(_ context.Context, userID int64, date, tm string, guests int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	r := models.Reservation{
		ID:        int64(len(m.reservations) + 1),
		UserID:    userID,
		Date:      date,
		Time:      tm,
		Guests:    guests,
		CreatedAt: time.Now(),
	}
	m.reservations = append(m.reservations, r)
	return r.ID, nil
}

func (m *MemoryRepository) ListReservations(_ context.Context) ([]models.ReservationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}

	views := make([]models.ReservationView, 0, len(m.reservations))
	for _, r := range m.reservations {
		v := models.ReservationView{Reservation: r}
		if u := m.userByID(r.UserID); u != nil {
			v.UserEmail, v.UserFirstName, v.UserLastName = u.Email, u.FirstName, u.LastName
		}
		views = append(views, v)
	}
	return views, nil
}

func (m *MemoryRepository) CreateOrders(_ context.Context, userID int64, items []string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		o := models.Order{
			ID:        int64(len(m.orders) + 1),
			UserID:    userID,
			Item:      item,
			CreatedAt: time.Now(),
		}
		m.orders = append(m.orders, o)
		ids = append(ids, o.ID)
	}
	return ids, nil
}

func (m *MemoryRepository) ListOrders(_ context.Context) ([]models.OrderView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}

	views := make([]models.OrderView, 0, len(m.orders))
	for _, o := range m.orders {
		v := models.OrderView{Order: o}
		if u := m.userByID(o.UserID); u != nil {
			v.UserEmail, v.UserFirstName, v.UserLastName = u.Email, u.FirstName, u.LastName
		}
		views = append(views, v)
	}
	return views, nil
}

func (m *MemoryRepository) HasHistory(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}

	for _, r := range m.reservations {
		if r.UserID == userID {
			return true, nil
		}
	}
	for _, o := range m.orders {
		if o.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// OrdersFor returns the order rows owned by userID.
func (m *MemoryRepository) OrdersFor(userID int64) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

// ReservationsFor returns the reservation rows owned by userID.
func (m *MemoryRepository) ReservationsFor(userID int64) []models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Reservation
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (m *MemoryRepository) userByID(id int64) *models.User {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i]
		}
	}
	return nil
}
