package match

import "testing"

func TestRoomIDOrderIndependent(t *testing.T) {
	if RoomID("A", "B") != RoomID("B", "A") {
		t.Fatalf("room id depends on argument order: %q vs %q", RoomID("A", "B"), RoomID("B", "A"))
	}
}

func TestRoomIDDistinctPairs(t *testing.T) {
	cases := []struct {
		a, b, want string
	}{
		{"111", "222", "room-111-222"},
		{"222", "111", "room-111-222"},
		{"alpha", "beta", "room-alpha-beta"},
	}
	for _, c := range cases {
		if got := RoomID(c.a, c.b); got != c.want {
			t.Errorf("RoomID(%q,%q)=%q, want %q", c.a, c.b, got, c.want)
		}
	}
	if RoomID("a", "b") == RoomID("a", "c") {
		t.Error("different pairs collided")
	}
}
