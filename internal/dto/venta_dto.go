package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado string `form:"estado,default=COMPLETADO"` // COMPLETADO | ANULADO | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest is one cart line. PrecioUnitario and Subtotal are what the
// client claims; they are typed loosely because the terminal may send strings,
// nulls or garbage, and the server recomputes everything anyway.
type ItemVentaRequest struct {
	ProductoID     string      `json:"producto_id" validate:"required,uuid"`
	VarianteID     *string     `json:"variante_id" validate:"omitempty,uuid"`
	Cantidad       int         `json:"cantidad"    validate:"required,min=1,max=1000000"`
	PrecioUnitario interface{} `json:"precio_unitario"`
	Subtotal       interface{} `json:"subtotal"`
}

type PagoRequest struct {
	Metodo     string          `json:"metodo" validate:"required,oneof=EFECTIVO DEBITO CREDITO TRANSFERENCIA QR"`
	Monto      decimal.Decimal `json:"monto"  validate:"gt=0"`
	Referencia *string         `json:"referencia" validate:"omitempty,max=100"`
}

type RegistrarVentaRequest struct {
	ClienteID     *string            `json:"cliente_id"     validate:"omitempty,uuid"`
	MetodoPago    string             `json:"metodo_pago"    validate:"required,oneof=EFECTIVO DEBITO CREDITO TRANSFERENCIA QR CUENTA_CORRIENTE MIXTO"`
	Descuento     interface{}        `json:"descuento"`
	TipoDescuento string             `json:"tipo_descuento" validate:"omitempty,oneof=PORCENTAJE FIJO"`
	Items         []ItemVentaRequest `json:"items"          validate:"required,min=1,dive"`
	// Pagos is only accepted, and then required, when MetodoPago is MIXTO.
	Pagos []PagoRequest `json:"pagos" validate:"omitempty,dive"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	VarianteID     *string         `json:"variante_id,omitempty"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type PagoResponse struct {
	Metodo     string          `json:"metodo"`
	Monto      decimal.Decimal `json:"monto"`
	Referencia *string         `json:"referencia,omitempty"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroTicket   int                 `json:"numero_ticket"`
	UsuarioID      string              `json:"usuario_id"`
	SesionCajaID   *string             `json:"sesion_caja_id"`
	ClienteID      *string             `json:"cliente_id"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DescuentoMonto decimal.Decimal     `json:"descuento_monto"`
	TipoDescuento  string              `json:"tipo_descuento"`
	Total          decimal.Decimal     `json:"total"`
	MetodoPago     string              `json:"metodo_pago"`
	Pagos          []PagoResponse      `json:"pagos"`
	Estado         string              `json:"estado"`
	CreatedAt      string              `json:"created_at"`
}
