package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de cuenta corriente.
const (
	ClienteActivo    = "ACTIVO"
	ClienteMoroso    = "MOROSO"
	ClienteInactivo  = "INACTIVO"
	ClienteBloqueado = "BLOQUEADO"
)

// Cliente holds a customer's credit account.
// DeudaActual only grows through on-account sales and only shrinks through
// registered payments.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"not null"`
	Documento     *string
	Email         *string
	Estado        string          `gorm:"type:varchar(20);not null;default:'ACTIVO'"`
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DeudaActual   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UltimaCompra  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
