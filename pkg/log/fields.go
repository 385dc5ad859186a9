package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID   = "user_id"
	FieldUsername = "username"
	FieldRole     = "role"

	// Service
	FieldService = "service"

	// Realtime
	FieldClientID = "client_id"
	FieldRoom     = "room"
	FieldEvent    = "event"
	FieldChannel  = "channel"

	// Feed
	FieldAuthorID = "author_id"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
