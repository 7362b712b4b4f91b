package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CajaAbierta = "ABIERTA"
	CajaCerrada = "CERRADA"
)

// SesionCaja is one operator's cash shift.
// At most one ABIERTA per usuario_id (partial unique index, see infra.RunMigrations).
// Closing fields stay nil/zero until Estado becomes CERRADA, which happens once.
type SesionCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NotasApertura *string
	Estado        string `gorm:"type:varchar(20);not null;default:'ABIERTA'"`
	OpenedAt      time.Time
	ClosedAt      *time.Time

	// Populated on close
	MontoCierre          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoEsperado        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia           *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalEfectivo        decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDebito          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCredito         decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTransferencia   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalQR              decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0;column:total_qr"`
	TotalCuentaCorriente decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalVentas          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDevoluciones    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	// TotalFacturado stays zero until fiscal invoicing exists.
	TotalFacturado       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalNoFacturado     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CantidadVentas       int             `gorm:"not null;default:0"`
	CantidadDevoluciones int             `gorm:"not null;default:0"`
	Notas                *string
	RequiereAutorizacion bool `gorm:"not null;default:false"`

	Usuario     *Usuario         `gorm:"foreignKey:UsuarioID"`
	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

// Tipos de movimiento de caja.
const (
	MovApertura   = "APERTURA"
	MovVenta      = "VENTA"
	MovCierre     = "CIERRE"
	MovIngreso    = "INGRESO"
	MovEgreso     = "EGRESO"
	MovDevolucion = "DEVOLUCION"
)

// MovimientoCaja is an immutable event in the cash register ledger.
// Movements are NEVER modified or deleted; cancellations create inverse entries.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	SesionCajaID *uuid.UUID      `gorm:"type:uuid;index"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	MetodoPago   *string         `gorm:"type:varchar(20)"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// ReferenciaID links to the originating Venta or manual operation
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
