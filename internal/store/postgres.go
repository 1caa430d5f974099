// Package store provides CRUD persistence for hotel operations data.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Constants for PostgreSQL connection pool configuration
const (
	// DefaultMaxOpenConns defines the maximum number of open connections
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns defines the maximum number of idle connections
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime defines the maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running PostgreSQL migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetHotel() (*Hotel, error) {
	var h Hotel
	var amenitiesJSON string
	err := s.db.QueryRow(`SELECT name, description, address, phone, amenities, check_in, check_out, updated_at FROM hotel WHERE id = 1`).Scan(
		&h.Name, &h.Description, &h.Address, &h.Phone, &amenitiesJSON, &h.CheckIn, &h.CheckOut, &h.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore.GetHotel failed", "error", err)
		return nil, fmt.Errorf("failed to query hotel: %w", err)
	}
	if amenitiesJSON != "" {
		if err := json.Unmarshal([]byte(amenitiesJSON), &h.Amenities); err != nil {
			slog.Error("PostgresStore.GetHotel amenities unmarshal failed", "error", err)
			h.Amenities = nil
		}
	}
	return &h, nil
}

func (s *PostgresStore) UpdateHotel(h Hotel) error {
	amenitiesJSON, err := json.Marshal(h.Amenities)
	if err != nil {
		return fmt.Errorf("failed to marshal amenities: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO hotel (id, name, description, address, phone, amenities, check_in, check_out, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, address = EXCLUDED.address,
			phone = EXCLUDED.phone, amenities = EXCLUDED.amenities, check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out, updated_at = EXCLUDED.updated_at`,
		h.Name, h.Description, h.Address, h.Phone, string(amenitiesJSON), h.CheckIn, h.CheckOut, time.Now().UTC())
	if err != nil {
		slog.Error("PostgresStore.UpdateHotel failed", "error", err)
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	slog.Debug("PostgresStore.UpdateHotel succeeded", "name", h.Name)
	return nil
}

func (s *PostgresStore) ListRooms() ([]Room, error) {
	rows, err := s.db.Query(`SELECT id, number, type, rate, status, created_at, updated_at FROM rooms ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore.ListRooms query failed", "error", err)
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var result []Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *PostgresStore) CreateRoom(r Room) (int64, error) {
	if r.Status == "" {
		r.Status = RoomStatusAvailable
	}
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRow(`INSERT INTO rooms (number, type, rate, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		r.Number, r.Type, r.Rate, r.Status, now, now).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore.CreateRoom failed", "error", err, "number", r.Number)
		return 0, fmt.Errorf("failed to insert room %s: %w", r.Number, err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateRoom(r Room) error {
	res, err := s.db.Exec(`UPDATE rooms SET number = $1, type = $2, rate = $3, status = $4, updated_at = $5 WHERE id = $6`,
		r.Number, r.Type, r.Rate, r.Status, time.Now().UTC(), r.ID)
	if err != nil {
		slog.Error("PostgresStore.UpdateRoom failed", "error", err, "id", r.ID)
		return fmt.Errorf("failed to update room %d: %w", r.ID, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) DeleteRoom(id int64) error {
	res, err := s.db.Exec(`DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore.DeleteRoom failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete room %d: %w", id, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) ListBookings() ([]Booking, error) {
	rows, err := s.db.Query(`SELECT id, guest_phone, guest_name, room_id, check_in, check_out, status, created_at, updated_at FROM bookings ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore.ListBookings query failed", "error", err)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (s *PostgresStore) CreateBooking(b Booking) (int64, error) {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRow(`INSERT INTO bookings (guest_phone, guest_name, room_id, check_in, check_out, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		b.GuestPhone, nilIfEmpty(b.GuestName), b.RoomID, b.CheckIn, b.CheckOut, b.Status, now, now).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore.CreateBooking failed", "error", err, "guestPhone", b.GuestPhone)
		return 0, fmt.Errorf("failed to insert booking for %s: %w", b.GuestPhone, err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateBooking(b Booking) error {
	res, err := s.db.Exec(`UPDATE bookings SET guest_phone = $1, guest_name = $2, room_id = $3, check_in = $4, check_out = $5, status = $6, updated_at = $7 WHERE id = $8`,
		b.GuestPhone, nilIfEmpty(b.GuestName), b.RoomID, b.CheckIn, b.CheckOut, b.Status, time.Now().UTC(), b.ID)
	if err != nil {
		slog.Error("PostgresStore.UpdateBooking failed", "error", err, "id", b.ID)
		return fmt.Errorf("failed to update booking %d: %w", b.ID, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) DeleteBooking(id int64) error {
	res, err := s.db.Exec(`DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore.DeleteBooking failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete booking %d: %w", id, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) ListStaff() ([]Staff, error) {
	rows, err := s.db.Query(`SELECT id, name, role, phone, created_at, updated_at FROM staff ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore.ListStaff query failed", "error", err)
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *PostgresStore) CreateStaff(m Staff) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRow(`INSERT INTO staff (name, role, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		m.Name, m.Role, nilIfEmpty(m.Phone), now, now).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore.CreateStaff failed", "error", err, "name", m.Name)
		return 0, fmt.Errorf("failed to insert staff %s: %w", m.Name, err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateStaff(m Staff) error {
	res, err := s.db.Exec(`UPDATE staff SET name = $1, role = $2, phone = $3, updated_at = $4 WHERE id = $5`,
		m.Name, m.Role, nilIfEmpty(m.Phone), time.Now().UTC(), m.ID)
	if err != nil {
		slog.Error("PostgresStore.UpdateStaff failed", "error", err, "id", m.ID)
		return fmt.Errorf("failed to update staff %d: %w", m.ID, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) DeleteStaff(id int64) error {
	res, err := s.db.Exec(`DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore.DeleteStaff failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete staff %d: %w", id, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(`SELECT id, title, assignee, status, created_at, updated_at FROM tasks ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore.ListTasks query failed", "error", err)
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *PostgresStore) CreateTask(t Task) (int64, error) {
	if t.Status == "" {
		t.Status = TaskStatusOpen
	}
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRow(`INSERT INTO tasks (title, assignee, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		t.Title, nilIfEmpty(t.Assignee), t.Status, now, now).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore.CreateTask failed", "error", err, "title", t.Title)
		return 0, fmt.Errorf("failed to insert task %q: %w", t.Title, err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateTask(t Task) error {
	res, err := s.db.Exec(`UPDATE tasks SET title = $1, assignee = $2, status = $3, updated_at = $4 WHERE id = $5`,
		t.Title, nilIfEmpty(t.Assignee), t.Status, time.Now().UTC(), t.ID)
	if err != nil {
		slog.Error("PostgresStore.UpdateTask failed", "error", err, "id", t.ID)
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore.DeleteTask failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return checkAffected(res)
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL database connection")
	return s.db.Close()
}
