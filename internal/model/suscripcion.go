package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Suscripcion is the tenant's current plan as seen by the plan gate.
// Features maps feature name → enabled. MaxVentasMes == 0 means unlimited.
type Suscripcion struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	Plan         string            `gorm:"type:varchar(30);not null"`
	Features     datatypes.JSONMap `gorm:"type:jsonb"`
	MaxVentasMes int               `gorm:"not null;default:0"`
	Activa       bool              `gorm:"not null;default:true"`
	VenceAt      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Suscripcion) TableName() string { return "suscripciones" }
