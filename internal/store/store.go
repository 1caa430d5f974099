// Package store provides CRUD persistence for hotel operations data.
//
// It includes an in-memory store (default), an SQLite-backed store for
// single-node deployments, and a PostgreSQL-backed store. The backend is
// selected by DSN: DetectDSNType distinguishes Postgres connection strings
// from SQLite file paths.
package store

import (
	"errors"
	"strings"
	"time"
)

// Entity status values.
const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"

	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCheckedIn = "checked_in"
	BookingStatusComplete  = "completed"

	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// ErrNotFound is returned when an update or delete targets a record that
// does not exist.
var ErrNotFound = errors.New("record not found")

// Hotel holds the property-level facts. There is exactly one hotel record.
type Hotel struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Amenities   []string  `json:"amenities"`
	CheckIn     string    `json:"check_in"`
	CheckOut    string    `json:"check_out"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Room is a single bookable room.
type Room struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Rate      float64   `json:"rate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Booking is a guest reservation for a room.
type Booking struct {
	ID         int64     `json:"id"`
	GuestPhone string    `json:"guest_phone"`
	GuestName  string    `json:"guest_name"`
	RoomID     int64     `json:"room_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Staff is a member of the hotel staff.
type Staff struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is an operational work item, optionally assigned to a staff member.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Assignee  string    `json:"assignee"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines CRUD operations over the hotel entities. List operations
// return records in insertion order.
type Store interface {
	GetHotel() (*Hotel, error)
	UpdateHotel(h Hotel) error

	ListRooms() ([]Room, error)
	CreateRoom(r Room) (int64, error)
	UpdateRoom(r Room) error
	DeleteRoom(id int64) error

	ListBookings() ([]Booking, error)
	CreateBooking(b Booking) (int64, error)
	UpdateBooking(b Booking) error
	DeleteBooking(id int64) error

	ListStaff() ([]Staff, error)
	CreateStaff(s Staff) (int64, error)
	UpdateStaff(s Staff) error
	DeleteStaff(id int64) error

	ListTasks() ([]Task, error)
	CreateTask(t Task) (int64, error)
	UpdateTask(t Task) error
	DeleteTask(id int64) error

	Close() error
}

// Opts holds configuration for the SQL-backed stores.
type Opts struct {
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType returns "postgres" for PostgreSQL connection strings and
// "sqlite" otherwise. SQLite DSNs are plain file paths, so anything that
// looks like a URL or key=value connection string is treated as Postgres.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// defaultHotel is the seed record used when no hotel row exists yet.
func defaultHotel() Hotel {
	return Hotel{
		Name:        "Amara Heritage Homestead",
		Description: "A restored heritage manor with an organic farm, hosting stays and wedding ceremonies.",
		Address:     "Amara Estate Road, 40 minutes from the city airport",
		Phone:       "",
		Amenities:   []string{"organic farm", "heritage courtyard", "farm-to-table dining", "wedding ceremonies"},
		CheckIn:     "14:00",
		CheckOut:    "11:00",
	}
}
