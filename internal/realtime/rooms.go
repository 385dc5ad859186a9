// Package realtime connects room broadcasts to the message bus so any
// instance can deliver to a connection held by any other instance.
package realtime

const (
	userRoomPrefix    = "user:"
	contentRoomPrefix = "content:"
)

// UserRoom is the private notification room of a user.
func UserRoom(userID string) string {
	return userRoomPrefix + userID
}

// ContentRoom is the live comment room of a content item.
func ContentRoom(contentID string) string {
	return contentRoomPrefix + contentID
}
