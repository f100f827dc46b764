package domain

import "time"

// AuditLog represents an audit event. UserID is zero for events with no
// authenticated user (e.g. a failed login).
type AuditLog struct {
	ID        string
	UserID    int64
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
