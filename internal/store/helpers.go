package store

import (
	"database/sql"
	"fmt"
)

// scanRoom scans a Room from sql.Rows.
func scanRoom(rows *sql.Rows) (Room, error) {
	var r Room
	if err := rows.Scan(&r.ID, &r.Number, &r.Type, &r.Rate, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return r, fmt.Errorf("scan room failed: %w", err)
	}
	return r, nil
}

// scanBooking scans a Booking from sql.Rows.
func scanBooking(rows *sql.Rows) (Booking, error) {
	var b Booking
	var guestName sql.NullString
	err := rows.Scan(&b.ID, &b.GuestPhone, &guestName, &b.RoomID, &b.CheckIn, &b.CheckOut, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, fmt.Errorf("scan booking failed: %w", err)
	}
	b.GuestName = guestName.String
	return b, nil
}

// scanStaff scans a Staff from sql.Rows.
func scanStaff(rows *sql.Rows) (Staff, error) {
	var m Staff
	var phone sql.NullString
	if err := rows.Scan(&m.ID, &m.Name, &m.Role, &phone, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return m, fmt.Errorf("scan staff failed: %w", err)
	}
	m.Phone = phone.String
	return m, nil
}

// scanTask scans a Task from sql.Rows.
func scanTask(rows *sql.Rows) (Task, error) {
	var t Task
	var assignee sql.NullString
	if err := rows.Scan(&t.ID, &t.Title, &assignee, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return t, fmt.Errorf("scan task failed: %w", err)
	}
	t.Assignee = assignee.String
	return t, nil
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// checkAffected maps a zero-row result to ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
