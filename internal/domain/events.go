package domain

// Client to server websocket events.
const (
	EventJoinUserRoom     = "join-user-room"
	EventJoinContentRoom  = "join-content-room"
	EventLeaveContentRoom = "leave-content-room"
)

// Server to client websocket events.
const (
	EventNewNotification = "new_notification"
	EventNewFollower     = "new-follower"
	EventNewComment      = "new_comment"
	EventCommentUpdated  = "comment_updated"
	EventCommentDeleted  = "comment_deleted"
)

// NewContentEvent returns the fan-out event name for a content kind.
func NewContentEvent(kind ContentKind) string {
	return "new-" + string(kind)
}
