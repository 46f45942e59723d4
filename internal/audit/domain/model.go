package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// AuditLog is append-only; nothing updates or deletes rows.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey;autoIncrement:false"`
	ActorType  string            `gorm:"type:varchar(32);not null"`
	ActorID    *string           `gorm:"type:varchar(64)"`
	Action     string            `gorm:"type:varchar(128);not null;index"`
	TargetType string            `gorm:"type:varchar(64);not null"`
	TargetID   *string           `gorm:"type:varchar(64)"`
	IPAddress  *string           `gorm:"type:varchar(64)"`
	UserAgent  *string           `gorm:"type:varchar(255)"`
	Metadata   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt  time.Time         `gorm:"not null;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type Service interface {
	// WithTx returns a Service whose writes join tx.
	WithTx(tx *gorm.DB) Service
	AuditLog(ctx context.Context, actorType ActorType, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditLog, error)
}

type ListFilter struct {
	From    time.Time
	To      time.Time
	Actions []string
}

type requestInfoKey struct{}

type RequestInfo struct {
	IPAddress string
	UserAgent string
}

// WithRequestInfo attaches the caller's address and user agent so that
// audit entries written further down the call chain can record them.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
