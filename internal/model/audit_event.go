package model

import "time"

const (
	AuditAccountRegistered     = "account.registered"
	AuditAccountLoginSucceeded = "account.login_succeeded"
	AuditAccountLoginFailed    = "account.login_failed"
	AuditAccountProfileUpdated = "account.profile_updated"
)

// AuditEvent records an account lifecycle event. AccountID is 0 when the
// event concerns a username that does not resolve to an account.
type AuditEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Type       string    `gorm:"size:64;not null;index" json:"type"`
	AccountID  uint      `gorm:"index" json:"account_id"`
	Username   string    `gorm:"size:50" json:"username"`
	TraceID    string    `gorm:"size:64" json:"trace_id"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
}
