// Package toolserver exposes the hotel operations store as MCP tools.
//
// It runs an MCP server over stdio so that agent runtimes can read and
// maintain hotel, room, booking, staff, and task records.
package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/karthik-pvr/innkeeper/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// Server wraps an MCP server over a hotel store.
type Server struct {
	st  store.Store
	srv *mcp.Server
}

// New creates a tool server backed by the given store.
func New(st store.Store) *Server {
	s := &Server{st: st}
	s.srv = mcp.NewServer(&mcp.Implementation{
		Name:    "innkeeper-tools",
		Version: "1.0.0",
	}, nil)
	s.register()
	return s
}

// Run serves MCP requests over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("ToolServer.Run: serving MCP over stdio")
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport (used in tests).
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.srv.Connect(ctx, t, nil)
}

func (s *Server) register() {
	mcp.AddTool(s.srv, &mcp.Tool{Name: "hotel_get", Description: "Get the hotel profile (name, description, address, amenities, check-in/out times)."}, s.hotelGet)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "hotel_update", Description: "Replace the hotel profile."}, s.hotelUpdate)

	mcp.AddTool(s.srv, &mcp.Tool{Name: "room_list", Description: "List all rooms."}, s.roomList)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "room_create", Description: "Create a room."}, s.roomCreate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "room_update", Description: "Update a room by id."}, s.roomUpdate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "room_delete", Description: "Delete a room by id."}, s.roomDelete)

	mcp.AddTool(s.srv, &mcp.Tool{Name: "booking_list", Description: "List all bookings."}, s.bookingList)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "booking_create", Description: "Create a booking. Dates use YYYY-MM-DD."}, s.bookingCreate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "booking_update", Description: "Update a booking by id. Dates use YYYY-MM-DD."}, s.bookingUpdate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "booking_delete", Description: "Delete a booking by id."}, s.bookingDelete)

	mcp.AddTool(s.srv, &mcp.Tool{Name: "staff_list", Description: "List all staff members."}, s.staffList)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "staff_create", Description: "Create a staff member."}, s.staffCreate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "staff_update", Description: "Update a staff member by id."}, s.staffUpdate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "staff_delete", Description: "Delete a staff member by id."}, s.staffDelete)

	mcp.AddTool(s.srv, &mcp.Tool{Name: "task_list", Description: "List all tasks."}, s.taskList)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "task_create", Description: "Create a task."}, s.taskCreate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "task_update", Description: "Update a task by id."}, s.taskUpdate)
	mcp.AddTool(s.srv, &mcp.Tool{Name: "task_delete", Description: "Delete a task by id."}, s.taskDelete)
}

type emptyInput struct{}

type idInput struct {
	ID int64 `json:"id" jsonschema:"record id"`
}

type idOutput struct {
	ID int64 `json:"id"`
}

type okOutput struct {
	OK bool `json:"ok"`
}

type hotelUpdateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	CheckIn     string   `json:"check_in,omitempty" jsonschema:"check-in time, e.g. 14:00"`
	CheckOut    string   `json:"check_out,omitempty" jsonschema:"check-out time, e.g. 11:00"`
}

func (s *Server) hotelGet(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, store.Hotel, error) {
	h, err := s.st.GetHotel()
	if err != nil {
		return nil, store.Hotel{}, err
	}
	return nil, *h, nil
}

func (s *Server) hotelUpdate(ctx context.Context, req *mcp.CallToolRequest, in hotelUpdateInput) (*mcp.CallToolResult, okOutput, error) {
	if in.Name == "" {
		return nil, okOutput{}, fmt.Errorf("hotel name is required")
	}
	h := store.Hotel{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Phone:       in.Phone,
		Amenities:   in.Amenities,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
	}
	if err := s.st.UpdateHotel(h); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

type roomInput struct {
	ID     int64   `json:"id,omitempty" jsonschema:"room id, required for updates"`
	Number string  `json:"number"`
	Type   string  `json:"type"`
	Rate   float64 `json:"rate,omitempty" jsonschema:"nightly rate"`
	Status string  `json:"status,omitempty" jsonschema:"available, occupied, or maintenance"`
}

type roomListOutput struct {
	Rooms []store.Room `json:"rooms"`
}

func (s *Server) roomList(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, roomListOutput, error) {
	rooms, err := s.st.ListRooms()
	if err != nil {
		return nil, roomListOutput{}, err
	}
	return nil, roomListOutput{Rooms: rooms}, nil
}

func (s *Server) roomCreate(ctx context.Context, req *mcp.CallToolRequest, in roomInput) (*mcp.CallToolResult, idOutput, error) {
	if in.Number == "" {
		return nil, idOutput{}, fmt.Errorf("room number is required")
	}
	id, err := s.st.CreateRoom(store.Room{Number: in.Number, Type: in.Type, Rate: in.Rate, Status: in.Status})
	if err != nil {
		return nil, idOutput{}, err
	}
	return nil, idOutput{ID: id}, nil
}

func (s *Server) roomUpdate(ctx context.Context, req *mcp.CallToolRequest, in roomInput) (*mcp.CallToolResult, okOutput, error) {
	err := s.st.UpdateRoom(store.Room{ID: in.ID, Number: in.Number, Type: in.Type, Rate: in.Rate, Status: in.Status})
	if err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (s *Server) roomDelete(ctx context.Context, req *mcp.CallToolRequest, in idInput) (*mcp.CallToolResult, okOutput, error) {
	if err := s.st.DeleteRoom(in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

type bookingInput struct {
	ID         int64  `json:"id,omitempty" jsonschema:"booking id, required for updates"`
	GuestPhone string `json:"guest_phone"`
	GuestName  string `json:"guest_name,omitempty"`
	RoomID     int64  `json:"room_id"`
	CheckIn    string `json:"check_in" jsonschema:"check-in date, YYYY-MM-DD"`
	CheckOut   string `json:"check_out" jsonschema:"check-out date, YYYY-MM-DD"`
	Status     string `json:"status,omitempty" jsonschema:"pending, confirmed, cancelled, checked_in, or completed"`
}

type bookingListOutput struct {
	Bookings []store.Booking `json:"bookings"`
}

func (s *Server) parseBooking(in bookingInput) (store.Booking, error) {
	if in.GuestPhone == "" {
		return store.Booking{}, fmt.Errorf("guest_phone is required")
	}
	checkIn, err := time.Parse(DateLayout, in.CheckIn)
	if err != nil {
		return store.Booking{}, fmt.Errorf("invalid check_in date %q: %w", in.CheckIn, err)
	}
	checkOut, err := time.Parse(DateLayout, in.CheckOut)
	if err != nil {
		return store.Booking{}, fmt.Errorf("invalid check_out date %q: %w", in.CheckOut, err)
	}
	if !checkOut.After(checkIn) {
		return store.Booking{}, fmt.Errorf("check_out must be after check_in")
	}
	return store.Booking{
		ID:         in.ID,
		GuestPhone: in.GuestPhone,
		GuestName:  in.GuestName,
		RoomID:     in.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     in.Status,
	}, nil
}

func (s *Server) bookingList(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, bookingListOutput, error) {
	bookings, err := s.st.ListBookings()
	if err != nil {
		return nil, bookingListOutput{}, err
	}
	return nil, bookingListOutput{Bookings: bookings}, nil
}

func (s *Server) bookingCreate(ctx context.Context, req *mcp.CallToolRequest, in bookingInput) (*mcp.CallToolResult, idOutput, error) {
	b, err := s.parseBooking(in)
	if err != nil {
		return nil, idOutput{}, err
	}
	id, err := s.st.CreateBooking(b)
	if err != nil {
		return nil, idOutput{}, err
	}
	return nil, idOutput{ID: id}, nil
}

func (s *Server) bookingUpdate(ctx context.Context, req *mcp.CallToolRequest, in bookingInput) (*mcp.CallToolResult, okOutput, error) {
	b, err := s.parseBooking(in)
	if err != nil {
		return nil, okOutput{}, err
	}
	if err := s.st.UpdateBooking(b); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (s *Server) bookingDelete(ctx context.Context, req *mcp.CallToolRequest, in idInput) (*mcp.CallToolResult, okOutput, error) {
	if err := s.st.DeleteBooking(in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

type staffInput struct {
	ID    int64  `json:"id,omitempty" jsonschema:"staff id, required for updates"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

type staffListOutput struct {
	Staff []store.Staff `json:"staff"`
}

func (s *Server) staffList(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, staffListOutput, error) {
	members, err := s.st.ListStaff()
	if err != nil {
		return nil, staffListOutput{}, err
	}
	return nil, staffListOutput{Staff: members}, nil
}

func (s *Server) staffCreate(ctx context.Context, req *mcp.CallToolRequest, in staffInput) (*mcp.CallToolResult, idOutput, error) {
	if in.Name == "" {
		return nil, idOutput{}, fmt.Errorf("staff name is required")
	}
	id, err := s.st.CreateStaff(store.Staff{Name: in.Name, Role: in.Role, Phone: in.Phone})
	if err != nil {
		return nil, idOutput{}, err
	}
	return nil, idOutput{ID: id}, nil
}

func (s *Server) staffUpdate(ctx context.Context, req *mcp.CallToolRequest, in staffInput) (*mcp.CallToolResult, okOutput, error) {
	err := s.st.UpdateStaff(store.Staff{ID: in.ID, Name: in.Name, Role: in.Role, Phone: in.Phone})
	if err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (s *Server) staffDelete(ctx context.Context, req *mcp.CallToolRequest, in idInput) (*mcp.CallToolResult, okOutput, error) {
	if err := s.st.DeleteStaff(in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

type taskInput struct {
	ID       int64  `json:"id,omitempty" jsonschema:"task id, required for updates"`
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
	Status   string `json:"status,omitempty" jsonschema:"open, in_progress, or done"`
}

type taskListOutput struct {
	Tasks []store.Task `json:"tasks"`
}

func (s *Server) taskList(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, taskListOutput, error) {
	tasks, err := s.st.ListTasks()
	if err != nil {
		return nil, taskListOutput{}, err
	}
	return nil, taskListOutput{Tasks: tasks}, nil
}

func (s *Server) taskCreate(ctx context.Context, req *mcp.CallToolRequest, in taskInput) (*mcp.CallToolResult, idOutput, error) {
	if in.Title == "" {
		return nil, idOutput{}, fmt.Errorf("task title is required")
	}
	id, err := s.st.CreateTask(store.Task{Title: in.Title, Assignee: in.Assignee, Status: in.Status})
	if err != nil {
		return nil, idOutput{}, err
	}
	return nil, idOutput{ID: id}, nil
}

func (s *Server) taskUpdate(ctx context.Context, req *mcp.CallToolRequest, in taskInput) (*mcp.CallToolResult, okOutput, error) {
	err := s.st.UpdateTask(store.Task{ID: in.ID, Title: in.Title, Assignee: in.Assignee, Status: in.Status})
	if err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (s *Server) taskDelete(ctx context.Context, req *mcp.CallToolRequest, in idInput) (*mcp.CallToolResult, okOutput, error) {
	if err := s.st.DeleteTask(in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}
