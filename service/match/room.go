package match

// RoomID derives the room name for a pair. Both partners compute it
// independently, so it must not depend on argument order.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "room-" + a + "-" + b
}
