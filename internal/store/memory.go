// Package store provides CRUD persistence for hotel operations data.
//
// This file implements the in-memory store used when no database DSN is
// configured. All operations are safe for concurrent use.
package store

import (
	"log/slog"
	"sync"
	"time"
)

// InMemoryStore keeps all records in process memory. Records are lost on
// restart; it is the default backend for development and tests.
type InMemoryStore struct {
	mu       sync.Mutex
	hotel    Hotel
	rooms    []Room
	bookings []Booking
	staff    []Staff
	tasks    []Task
	nextID   int64
}

// NewInMemoryStore creates an in-memory store seeded with the default
// hotel record.
func NewInMemoryStore() *InMemoryStore {
	h := defaultHotel()
	h.UpdatedAt = time.Now().UTC()
	return &InMemoryStore{hotel: h, nextID: 1}
}

func (s *InMemoryStore) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *InMemoryStore) GetHotel() (*Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hotel
	h.Amenities = append([]string(nil), s.hotel.Amenities...)
	return &h, nil
}

func (s *InMemoryStore) UpdateHotel(h Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.Amenities = append([]string(nil), h.Amenities...)
	h.UpdatedAt = time.Now().UTC()
	s.hotel = h
	slog.Debug("InMemoryStore.UpdateHotel succeeded", "name", h.Name)
	return nil
}

func (s *InMemoryStore) ListRooms() ([]Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Room(nil), s.rooms...), nil
}

func (s *InMemoryStore) CreateRoom(r Room) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.allocID()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = RoomStatusAvailable
	}
	s.rooms = append(s.rooms, r)
	slog.Debug("InMemoryStore.CreateRoom succeeded", "id", r.ID, "number", r.Number)
	return r.ID, nil
}

func (s *InMemoryStore) UpdateRoom(r Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rooms {
		if s.rooms[i].ID == r.ID {
			r.CreatedAt = s.rooms[i].CreatedAt
			r.UpdatedAt = time.Now().UTC()
			s.rooms[i] = r
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) DeleteRoom(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) ListBookings() ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Booking(nil), s.bookings...), nil
}

func (s *InMemoryStore) CreateBooking(b Booking) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.allocID()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	s.bookings = append(s.bookings, b)
	slog.Debug("InMemoryStore.CreateBooking succeeded", "id", b.ID, "guestPhone", b.GuestPhone)
	return b.ID, nil
}

func (s *InMemoryStore) UpdateBooking(b Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == b.ID {
			b.CreatedAt = s.bookings[i].CreatedAt
			b.UpdatedAt = time.Now().UTC()
			s.bookings[i] = b
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) DeleteBooking(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) ListStaff() ([]Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Staff(nil), s.staff...), nil
}

func (s *InMemoryStore) CreateStaff(m Staff) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.allocID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.staff = append(s.staff, m)
	slog.Debug("InMemoryStore.CreateStaff succeeded", "id", m.ID, "name", m.Name)
	return m.ID, nil
}

func (s *InMemoryStore) UpdateStaff(m Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff {
		if s.staff[i].ID == m.ID {
			m.CreatedAt = s.staff[i].CreatedAt
			m.UpdatedAt = time.Now().UTC()
			s.staff[i] = m
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) DeleteStaff(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff {
		if s.staff[i].ID == id {
			s.staff = append(s.staff[:i], s.staff[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) ListTasks() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.tasks...), nil
}

func (s *InMemoryStore) CreateTask(t Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.allocID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = TaskStatusOpen
	}
	s.tasks = append(s.tasks, t)
	slog.Debug("InMemoryStore.CreateTask succeeded", "id", t.ID, "title", t.Title)
	return t.ID, nil
}

func (s *InMemoryStore) UpdateTask(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			t.CreatedAt = s.tasks[i].CreatedAt
			t.UpdatedAt = time.Now().UTC()
			s.tasks[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) DeleteTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
