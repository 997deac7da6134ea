package mocks

import (
	"context"
	"sync"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// MockBookingStore implements store.BookingStore for testing.
type MockBookingStore struct {
	GetByIDFn func(ctx context.Context, id int64) (*domain.Booking, error)

	mu       sync.Mutex
	bookings map[int64]*domain.Booking
	nextID   int64
}

// Ensure MockBookingStore implements store.BookingStore
var _ store.BookingStore = (*MockBookingStore)(nil)

// NewMockBookingStore creates a new mock store with initialized defaults.
func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{
		bookings: make(map[int64]*domain.Booking),
		nextID:   1,
	}
}

// Seed inserts a booking directly.
func (m *MockBookingStore) Seed(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.ID == 0 {
		booking.ID = m.nextID
		m.nextID++
	} else if booking.ID >= m.nextID {
		m.nextID = booking.ID + 1
	}
	m.bookings[booking.ID] = booking
}

// Create implements the BookingStore interface.
func (m *MockBookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	m.Seed(booking)
	return nil
}

// GetByID implements the BookingStore interface.
func (m *MockBookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, store.ErrBookingNotFound
}

// Update implements the BookingStore interface.
func (m *MockBookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[booking.ID]; !ok {
		return store.ErrBookingNotFound
	}
	m.bookings[booking.ID] = booking
	return nil
}

// Delete implements the BookingStore interface.
func (m *MockBookingStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return store.ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}
