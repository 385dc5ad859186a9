package audit

import (
	"context"

	"github.com/codegram/codegram-live/pkg/log"
)

// Audit actions.
const (
	ActionLike            = "like.toggle"
	ActionBookmark        = "bookmark.toggle"
	ActionFollow          = "follow.toggle"
	ActionBlock           = "block.toggle"
	ActionCommentCreate   = "comment.create"
	ActionCommentUpdate   = "comment.update"
	ActionCommentDelete   = "comment.delete"
	ActionContentCreate   = "content.create"
	ActionBugStatusUpdate = "bug.status_update"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldActive   = "active"
	FieldDetail   = "detail"
)

// Log emits a structured audit entry via the context logger.
func Log(ctx context.Context, action, userID, targetID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogToggle records the resulting state of a toggle.
func LogToggle(ctx context.Context, action, userID, targetID string, active bool) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Bool(FieldActive, active).
		Msg("toggle applied")
}

// LogWithDetail emits an audit entry with an extra detail field.
func LogWithDetail(ctx context.Context, action, userID, targetID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Str(FieldDetail, detail).
		Msg(msg)
}
