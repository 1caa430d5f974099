package toolserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/karthik-pvr/innkeeper/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestHotelGetAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewInMemoryStore())

	_, h, err := s.hotelGet(ctx, nil, emptyInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Name != "Amara Heritage Homestead" {
		t.Errorf("hotel name = %q", h.Name)
	}

	_, out, err := s.hotelUpdate(ctx, nil, hotelUpdateInput{
		Name:     "Amara Heritage Homestead",
		CheckIn:  "15:00",
		CheckOut: "10:00",
	})
	if err != nil || !out.OK {
		t.Fatalf("hotelUpdate = (%+v, %v)", out, err)
	}
	_, h, _ = s.hotelGet(ctx, nil, emptyInput{})
	if h.CheckIn != "15:00" {
		t.Errorf("check-in after update = %q", h.CheckIn)
	}

	if _, _, err := s.hotelUpdate(ctx, nil, hotelUpdateInput{}); err == nil {
		t.Error("expected error for missing hotel name")
	}
}

func TestRoomTools(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewInMemoryStore())

	_, created, err := s.roomCreate(ctx, nil, roomInput{Number: "101", Type: "heritage suite", Rate: 180})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("roomCreate returned zero id")
	}

	if _, _, err := s.roomCreate(ctx, nil, roomInput{}); err == nil {
		t.Error("expected error for missing room number")
	}

	_, list, err := s.roomList(ctx, nil, emptyInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].Number != "101" {
		t.Fatalf("roomList = %+v", list.Rooms)
	}

	_, ok, err := s.roomUpdate(ctx, nil, roomInput{ID: created.ID, Number: "101", Type: "heritage suite", Rate: 200, Status: store.RoomStatusOccupied})
	if err != nil || !ok.OK {
		t.Fatalf("roomUpdate = (%+v, %v)", ok, err)
	}

	if _, _, err := s.roomDelete(ctx, nil, idInput{ID: 999}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("roomDelete missing id = %v, want ErrNotFound", err)
	}
	if _, _, err := s.roomDelete(ctx, nil, idInput{ID: created.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBookingToolsValidateDates(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewInMemoryStore())

	_, room, _ := s.roomCreate(ctx, nil, roomInput{Number: "101", Type: "garden room"})

	_, created, err := s.bookingCreate(ctx, nil, bookingInput{
		GuestPhone: "+919876541234",
		RoomID:     room.ID,
		CheckIn:    "2026-09-12",
		CheckOut:   "2026-09-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, list, _ := s.bookingList(ctx, nil, emptyInput{})
	if len(list.Bookings) != 1 || list.Bookings[0].Status != store.BookingStatusPending {
		t.Fatalf("bookingList = %+v", list.Bookings)
	}

	cases := []bookingInput{
		{RoomID: room.ID, CheckIn: "2026-09-12", CheckOut: "2026-09-15"},               // no phone
		{GuestPhone: "+1", RoomID: room.ID, CheckIn: "12/09/2026", CheckOut: "2026-09-15"}, // bad date format
		{GuestPhone: "+1", RoomID: room.ID, CheckIn: "2026-09-15", CheckOut: "2026-09-12"}, // checkout before checkin
	}
	for i, in := range cases {
		if _, _, err := s.bookingCreate(ctx, nil, in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}

	_, ok, err := s.bookingUpdate(ctx, nil, bookingInput{
		ID:         created.ID,
		GuestPhone: "+919876541234",
		RoomID:     room.ID,
		CheckIn:    "2026-09-12",
		CheckOut:   "2026-09-16",
		Status:     store.BookingStatusConfirmed,
	})
	if err != nil || !ok.OK {
		t.Fatalf("bookingUpdate = (%+v, %v)", ok, err)
	}
}

func TestStaffAndTaskTools(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewInMemoryStore())

	_, member, err := s.staffCreate(ctx, nil, staffInput{Name: "Meera", Role: "front desk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.staffCreate(ctx, nil, staffInput{Role: "gardener"}); err == nil {
		t.Error("expected error for missing staff name")
	}

	_, task, err := s.taskCreate(ctx, nil, taskInput{Title: "Prepare courtyard for ceremony", Assignee: "Meera"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok, err := s.taskUpdate(ctx, nil, taskInput{ID: task.ID, Title: "Prepare courtyard for ceremony", Assignee: "Meera", Status: store.TaskStatusDone})
	if err != nil || !ok.OK {
		t.Fatalf("taskUpdate = (%+v, %v)", ok, err)
	}

	if _, _, err := s.taskDelete(ctx, nil, idInput{ID: task.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.staffDelete(ctx, nil, idInput{ID: member.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestSessionRoundTrip drives the server through a real MCP session over
// in-memory transports.
func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewInMemoryStore())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.Connect(ctx, serverTransport)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "innkeeper-test", Version: "1.0.0"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer clientSession.Close()

	result, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name: "room_create",
		Arguments: map[string]any{
			"number": "101",
			"type":   "heritage suite",
			"rate":   180,
		},
	})
	if err != nil {
		t.Fatalf("CallTool room_create failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("room_create returned tool error: %+v", result.Content)
	}

	result, err = clientSession.CallTool(ctx, &mcp.CallToolParams{Name: "room_list", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool room_list failed: %v", err)
	}
	var text string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			text += tc.Text
		}
	}
	if !strings.Contains(text, "101") {
		t.Errorf("room_list output missing created room: %q", text)
	}
}
