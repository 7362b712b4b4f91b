package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record of sensitive state transitions.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	UsuarioID uuid.UUID         `gorm:"type:uuid;not null"`
	Accion    string            `gorm:"type:varchar(50);not null;index"`
	Entidad   string            `gorm:"type:varchar(50);not null"`
	EntidadID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Detalle   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (AuditLog) TableName() string { return "audit_logs" }
