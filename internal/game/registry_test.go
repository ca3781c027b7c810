package game

import (
	"errors"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})
	if reg.rooms == nil {
		t.Fatal("rooms map should be initialized")
	}
	if reg.Len() != 0 {
		t.Fatal("registry should start empty")
	}
}

func TestCreateRoom(t *testing.T) {
	reg, clk := newTestRegistry()

	room, err := reg.Create(RoomOptions{Name: "  Friday <b>night</b> ", IsPublic: true, MaxPlayers: 9})
	if err != nil {
		t.Fatalf("should be able to create room: %v", err)
	}
	if room.Code == "" {
		t.Fatal("room code should not be empty")
	}
	if room.MaxPlayers != MaxPlayers {
		t.Fatalf("expected maxPlayers clamped to %d, got %d", MaxPlayers, room.MaxPlayers)
	}
	if room.Name != "Friday bnight/b" {
		t.Fatalf("expected sanitized name, got %q", room.Name)
	}
	if room.State != StateLobby || room.Round != 0 {
		t.Fatalf("expected lobby at round 0, got %s at %d", room.State, room.Round)
	}
	if len(room.Players) != 0 || room.HostID != "" {
		t.Fatal("creating a room should not add players")
	}
	if !room.Filter {
		t.Fatal("filter should default to on")
	}
	if !room.UpdatedAt.Equal(clk.t) {
		t.Fatal("updatedAt should be set from the registry clock")
	}

	got, err := reg.Get(room.Code)
	if err != nil || got != room {
		t.Fatalf("should be able to retrieve created room: %v", err)
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	reg, _ := newTestRegistry()
	off := false
	room, err := reg.Create(RoomOptions{MaxPlayers: 1, Filter: &off})
	if err != nil {
		t.Fatalf("should be able to create room: %v", err)
	}
	if room.MaxPlayers != MinPlayers {
		t.Fatalf("expected maxPlayers clamped to %d, got %d", MinPlayers, room.MaxPlayers)
	}
	if room.Name != "Room "+room.Code {
		t.Fatalf("expected default name, got %q", room.Name)
	}
	if room.Filter {
		t.Fatal("filter should be off when requested")
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Codes: &seqCodes{codes: []string{"AAAA", "AAAA", "BBBB"}}})
	first, err := reg.Create(RoomOptions{})
	if err != nil {
		t.Fatalf("should be able to create room: %v", err)
	}
	second, err := reg.Create(RoomOptions{})
	if err != nil {
		t.Fatalf("should be able to create second room: %v", err)
	}
	if first.Code != "AAAA" || second.Code != "BBBB" {
		t.Fatalf("expected AAAA and BBBB, got %s and %s", first.Code, second.Code)
	}
}

func TestCreateCodeSpaceExhausted(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Codes: &seqCodes{codes: []string{"AAAA"}}})
	if _, err := reg.Create(RoomOptions{}); err != nil {
		t.Fatalf("should be able to create room: %v", err)
	}
	if _, err := reg.Create(RoomOptions{}); !errors.Is(err, ErrCodeSpace) {
		t.Fatalf("expected ErrCodeSpace, got %v", err)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Codes: &seqCodes{codes: []string{"XY7K"}}})
	room, _ := reg.Create(RoomOptions{})
	got, err := reg.Get("  xy7k ")
	if err != nil || got != room {
		t.Fatalf("lookup should canonicalize codes: %v", err)
	}
	if _, err := reg.Get("NOPE"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestListPublic(t *testing.T) {
	reg, clk := newTestRegistry()

	private, _ := reg.Create(RoomOptions{IsPublic: false, MaxPlayers: 5})
	full := newLobby(reg, 2, "a", "b")
	ended := newLobby(reg, 5, "c")
	ended.State = StateEnded

	var open []*Room
	for i := 0; i < 7; i++ {
		clk.advance(time.Second)
		open = append(open, newLobby(reg, 5, "x"))
	}
	_ = private

	list := reg.ListPublic(5)
	if len(list) != 5 {
		t.Fatalf("expected 5 summaries, got %d", len(list))
	}
	for i, s := range list {
		want := open[len(open)-1-i]
		if s.Code != want.Code {
			t.Fatalf("position %d: expected %s, got %s", i, want.Code, s.Code)
		}
		if s.Players != 1 || s.MaxPlayers != 5 {
			t.Fatalf("unexpected summary %+v", s)
		}
	}
	for _, s := range reg.ListPublic(100) {
		if s.Code == private.Code || s.Code == full.Code || s.Code == ended.Code {
			t.Fatalf("room %s should not be listed", s.Code)
		}
	}
}

func TestListPublicCountsOnlyConnected(t *testing.T) {
	reg, _ := newTestRegistry()
	room := newLobby(reg, 3, "a", "b")
	room.Disconnect("b")
	list := reg.ListPublic(5)
	if len(list) != 1 || list[0].Players != 1 {
		t.Fatalf("room with a free slot should be listed with connected players only, got %+v", list)
	}
}

func TestListPublicHidesRosterFull(t *testing.T) {
	reg, _ := newTestRegistry()
	room := newLobby(reg, 2, "a", "b")
	if len(reg.ListPublic(5)) != 0 {
		t.Fatal("full room should not be listed")
	}
	room.Disconnect("b")
	if list := reg.ListPublic(5); len(list) != 0 {
		t.Fatalf("room whose slots are held by disconnected players should not be listed, got %+v", list)
	}
	if _, err := room.Join("c", "C", ""); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestRemoveOnlyEmpty(t *testing.T) {
	reg, _ := newTestRegistry()
	room := newLobby(reg, 5, "a")
	if reg.Remove(room.Code) {
		t.Fatal("should not remove a room with players")
	}
	room.Disconnect("a")
	if reg.Remove(room.Code) {
		t.Fatal("should not remove a room with disconnected players")
	}
	room.Leave("a")
	if !reg.Remove(room.Code) {
		t.Fatal("should remove an empty room")
	}
	if _, err := reg.Get(room.Code); !errors.Is(err, ErrRoomNotFound) {
		t.Fatal("removed room should be gone")
	}
}

func TestSweep(t *testing.T) {
	reg, clk := newTestRegistry()
	room := newLobby(reg, 5, "a", "b", "c")
	lonely := newLobby(reg, 5, "z")

	room.Disconnect("a")
	lonely.Disconnect("z")

	clk.advance(30 * time.Second)
	if res := reg.Sweep(clk.t); len(res) != 0 {
		t.Fatalf("nothing should be swept inside the grace period, got %+v", res)
	}

	clk.advance(31 * time.Second)
	res := reg.Sweep(clk.t)
	if len(res) != 2 {
		t.Fatalf("expected 2 sweep results, got %d", len(res))
	}
	if room.Player("a") != nil {
		t.Fatal("player a should have been removed")
	}
	if room.HostID != "b" || !room.Players[0].IsHost {
		t.Fatalf("host should have moved to b, got %q", room.HostID)
	}
	if _, err := reg.Get(lonely.Code); !errors.Is(err, ErrRoomNotFound) {
		t.Fatal("room left empty should be deleted")
	}
	if _, err := reg.Get(room.Code); err != nil {
		t.Fatal("room with players should survive the sweep")
	}
}

func TestSweepKeepsFreshEmptyRoom(t *testing.T) {
	reg, clk := newTestRegistry()
	room, err := reg.Create(RoomOptions{IsPublic: true, MaxPlayers: 5})
	if err != nil {
		t.Fatalf("should be able to create room: %v", err)
	}

	clk.advance(time.Second)
	if res := reg.Sweep(clk.t); len(res) != 0 {
		t.Fatalf("room nobody joined yet should survive inside the grace period, got %+v", res)
	}
	if _, err := reg.Get(room.Code); err != nil {
		t.Fatalf("creator should still be able to find the room: %v", err)
	}
	if _, err := room.Join("a", "A", ""); err != nil {
		t.Fatalf("creator should be able to join after a sweep: %v", err)
	}
	room.Leave("a")

	clk.advance(time.Minute)
	res := reg.Sweep(clk.t)
	if len(res) != 1 || !res[0].Deleted {
		t.Fatalf("room empty past the grace period should be deleted, got %+v", res)
	}
	if _, err := reg.Get(room.Code); !errors.Is(err, ErrRoomNotFound) {
		t.Fatal("stale empty room should be gone")
	}
}

func TestCreateWithFailingRandomSource(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Codes: RandomCodes{N: 5, Reader: failingReader{}}})
	if _, err := reg.Create(RoomOptions{}); !errors.Is(err, ErrCodeSpace) {
		t.Fatalf("expected ErrCodeSpace when randomness fails, got %v", err)
	}
	if got := (RandomCodes{N: 5, Reader: failingReader{}}).Generate(); got != "" {
		t.Fatalf("generator should return an empty code on read failure, got %q", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestSweepKeepsReconnected(t *testing.T) {
	reg, clk := newTestRegistry()
	room := newLobby(reg, 5, "a", "b")
	room.Disconnect("a")
	clk.advance(30 * time.Second)
	room.Reconnect("a")
	clk.advance(2 * time.Minute)
	if res := reg.Sweep(clk.t); len(res) != 0 {
		t.Fatalf("reconnected player should not be swept, got %+v", res)
	}
	if room.Players[0].ID != "a" {
		t.Fatal("reconnected player should keep their slot")
	}
}
