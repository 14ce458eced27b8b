package chat

const roomSeparator = "_"

// RoomID derives the canonical room identifier for a pair of
// participants: lexicographic sort, then join. Pure and symmetric, so
// both sides of a conversation land in the same room regardless of who
// joins first.
func RoomID(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + roomSeparator + userB
}
