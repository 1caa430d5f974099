// Package store provides CRUD persistence for hotel operations data.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetHotel() (*Hotel, error) {
	var h Hotel
	var amenitiesJSON string
	err := s.db.QueryRow(`SELECT name, description, address, phone, amenities, check_in, check_out, updated_at FROM hotel WHERE id = 1`).Scan(
		&h.Name, &h.Description, &h.Address, &h.Phone, &amenitiesJSON, &h.CheckIn, &h.CheckOut, &h.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore.GetHotel failed", "error", err)
		return nil, fmt.Errorf("failed to query hotel: %w", err)
	}
	if amenitiesJSON != "" {
		if err := json.Unmarshal([]byte(amenitiesJSON), &h.Amenities); err != nil {
			slog.Error("SQLiteStore.GetHotel amenities unmarshal failed", "error", err)
			h.Amenities = nil
		}
	}
	return &h, nil
}

func (s *SQLiteStore) UpdateHotel(h Hotel) error {
	amenitiesJSON, err := json.Marshal(h.Amenities)
	if err != nil {
		return fmt.Errorf("failed to marshal amenities: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO hotel (id, name, description, address, phone, amenities, check_in, check_out, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Name, h.Description, h.Address, h.Phone, string(amenitiesJSON), h.CheckIn, h.CheckOut, time.Now().UTC())
	if err != nil {
		slog.Error("SQLiteStore.UpdateHotel failed", "error", err)
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	slog.Debug("SQLiteStore.UpdateHotel succeeded", "name", h.Name)
	return nil
}

func (s *SQLiteStore) ListRooms() ([]Room, error) {
	rows, err := s.db.Query(`SELECT id, number, type, rate, status, created_at, updated_at FROM rooms ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore.ListRooms query failed", "error", err)
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

func (s *SQLiteStore) CreateRoom(r Room) (int64, error) {
	if r.Status == "" {
		r.Status = RoomStatusAvailable
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO rooms (number, type, rate, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.Number, r.Type, r.Rate, r.Status, now, now)
	if err != nil {
		slog.Error("SQLiteStore.CreateRoom failed", "error", err, "number", r.Number)
		return 0, fmt.Errorf("failed to insert room %s: %w", r.Number, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateRoom(r Room) error {
	res, err := s.db.Exec(`UPDATE rooms SET number = ?, type = ?, rate = ?, status = ?, updated_at = ? WHERE id = ?`,
		r.Number, r.Type, r.Rate, r.Status, time.Now().UTC(), r.ID)
	if err != nil {
		slog.Error("SQLiteStore.UpdateRoom failed", "error", err, "id", r.ID)
		return fmt.Errorf("failed to update room %d: %w", r.ID, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteRoom(id int64) error {
	res, err := s.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore.DeleteRoom failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete room %d: %w", id, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) ListBookings() ([]Booking, error) {
	rows, err := s.db.Query(`SELECT id, guest_phone, guest_name, room_id, check_in, check_out, status, created_at, updated_at FROM bookings ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore.ListBookings query failed", "error", err)
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

func (s *SQLiteStore) CreateBooking(b Booking) (int64, error) {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO bookings (guest_phone, guest_name, room_id, check_in, check_out, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.GuestPhone, nilIfEmpty(b.GuestName), b.RoomID, b.CheckIn, b.CheckOut, b.Status, now, now)
	if err != nil {
		slog.Error("SQLiteStore.CreateBooking failed", "error", err, "guestPhone", b.GuestPhone)
		return 0, fmt.Errorf("failed to insert booking for %s: %w", b.GuestPhone, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateBooking(b Booking) error {
	res, err := s.db.Exec(`UPDATE bookings SET guest_phone = ?, guest_name = ?, room_id = ?, check_in = ?, check_out = ?, status = ?, updated_at = ? WHERE id = ?`,
		b.GuestPhone, nilIfEmpty(b.GuestName), b.RoomID, b.CheckIn, b.CheckOut, b.Status, time.Now().UTC(), b.ID)
	if err != nil {
		slog.Error("SQLiteStore.UpdateBooking failed", "error", err, "id", b.ID)
		return fmt.Errorf("failed to update booking %d: %w", b.ID, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteBooking(id int64) error {
	res, err := s.db.Exec(`DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore.DeleteBooking failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete booking %d: %w", id, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) ListStaff() ([]Staff, error) {
	rows, err := s.db.Query(`SELECT id, name, role, phone, created_at, updated_at FROM staff ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore.ListStaff query failed", "error", err)
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

func (s *SQLiteStore) CreateStaff(m Staff) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO staff (name, role, phone, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.Role, nilIfEmpty(m.Phone), now, now)
	if err != nil {
		slog.Error("SQLiteStore.CreateStaff failed", "error", err, "name", m.Name)
		return 0, fmt.Errorf("failed to insert staff %s: %w", m.Name, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateStaff(m Staff) error {
	res, err := s.db.Exec(`UPDATE staff SET name = ?, role = ?, phone = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.Role, nilIfEmpty(m.Phone), time.Now().UTC(), m.ID)
	if err != nil {
		slog.Error("SQLiteStore.UpdateStaff failed", "error", err, "id", m.ID)
		return fmt.Errorf("failed to update staff %d: %w", m.ID, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteStaff(id int64) error {
	res, err := s.db.Exec(`DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore.DeleteStaff failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete staff %d: %w", id, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(`SELECT id, title, assignee, status, created_at, updated_at FROM tasks ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore.ListTasks query failed", "error", err)
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

func (s *SQLiteStore) CreateTask(t Task) (int64, error) {
	if t.Status == "" {
		t.Status = TaskStatusOpen
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO tasks (title, assignee, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.Title, nilIfEmpty(t.Assignee), t.Status, now, now)
	if err != nil {
		slog.Error("SQLiteStore.CreateTask failed", "error", err, "title", t.Title)
		return 0, fmt.Errorf("failed to insert task %q: %w", t.Title, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateTask(t Task) error {
	res, err := s.db.Exec(`UPDATE tasks SET title = ?, assignee = ?, status = ?, updated_at = ? WHERE id = ?`,
		t.Title, nilIfEmpty(t.Assignee), t.Status, time.Now().UTC(), t.ID)
	if err != nil {
		slog.Error("SQLiteStore.UpdateTask failed", "error", err, "id", t.ID)
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore.DeleteTask failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return checkAffected(res)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
