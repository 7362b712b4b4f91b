package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable unit owned by one tenant.
// TieneVariantes=true means quantity lives on its Variantes and
// Producto.StockActual is ignored by the sale flow.
type Producto struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CodigoBarras   string    `gorm:"not null;index"`
	Nombre         string    `gorm:"index;not null"`
	Descripcion    *string
	Categoria      string          `gorm:"not null;default:''"`
	PrecioCosto    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual    int             `gorm:"not null;default:0"`
	StockMinimo    int             `gorm:"not null;default:5"`
	UnidadMedida   string          `gorm:"not null;default:'unidad'"`
	TieneVariantes bool            `gorm:"not null;default:false"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Variantes []Variante `gorm:"foreignKey:ProductoID"`
}
