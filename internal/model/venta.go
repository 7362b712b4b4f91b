package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metodos de pago.
const (
	MetodoEfectivo        = "EFECTIVO"
	MetodoDebito          = "DEBITO"
	MetodoCredito         = "CREDITO"
	MetodoTransferencia   = "TRANSFERENCIA"
	MetodoQR              = "QR"
	MetodoCuentaCorriente = "CUENTA_CORRIENTE"
	MetodoMixto           = "MIXTO"
)

// MetodosSimples lists every method that can appear as a bucket in a shift
// summary (everything except MIXTO).
var MetodosSimples = []string{
	MetodoEfectivo, MetodoDebito, MetodoCredito, MetodoTransferencia, MetodoQR, MetodoCuentaCorriente,
}

const (
	VentaCompletada = "COMPLETADO"
	VentaPendiente  = "PENDIENTE"
	VentaAnulada    = "ANULADO"

	DescuentoPorcentaje = "PORCENTAJE"
	DescuentoFijo       = "FIJO"
)

// Venta is immutable once written; only AnularVenta flips Estado.
// NumeroTicket is unique per operator (usuario_id), not globally.
type Venta struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	NumeroTicket    int             `gorm:"not null;uniqueIndex:idx_ventas_usuario_ticket,priority:2"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ventas_usuario_ticket,priority:1"`
	SesionCajaID    *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteID       *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoMonto  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TipoDescuento   string          `gorm:"type:varchar(20);not null;default:'FIJO'"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago      string          `gorm:"type:varchar(20);not null"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'COMPLETADO'"`
	MotivoAnulacion *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Pagos   []VentaPago `gorm:"foreignKey:VentaID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
}

// VentaItem freezes the unit price at sale time.
// Subtotal is always Cantidad × PrecioUnitario.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	VarianteID     *uuid.UUID      `gorm:"type:uuid"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// VentaPago is one split of a MIXTO sale.
type VentaPago struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Metodo     string          `gorm:"type:varchar(20);not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Referencia *string
}

// Devolucion is money handed back to a customer. It belongs to the shift
// that was open when the refund happened, which may differ from the sale's.
type Devolucion struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	VentaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SesionCajaID *uuid.UUID      `gorm:"type:uuid;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Metodo       string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo       string          `gorm:"not null"`
	CreatedAt    time.Time
}

func (Devolucion) TableName() string { return "devoluciones" }
