package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variante is a size/colour/flavour of a Producto with its own stock.
// Pricing falls back to the parent when PrecioVenta is nil.
type Variante struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Nombre      string           `gorm:"not null"`
	SKU         *string          `gorm:"column:sku"`
	PrecioVenta *decimal.Decimal `gorm:"type:decimal(12,2)"`
	StockActual int              `gorm:"not null;default:0"`
	StockMinimo int              `gorm:"not null;default:0"`
	Activo      bool             `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
