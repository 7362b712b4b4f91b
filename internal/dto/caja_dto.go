package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
	Notas        *string         `json:"notas"         validate:"omitempty,max=500"`
}

type CerrarCajaRequest struct {
	// SesionCajaID defaults to the operator's open shift when empty.
	SesionCajaID string          `json:"sesion_caja_id" validate:"omitempty,uuid"`
	MontoCierre  decimal.Decimal `json:"monto_cierre"   validate:"min=0"`
	Notas        *string         `json:"notas"          validate:"omitempty,max=1000"`
}

type MovimientoManualRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=INGRESO EGRESO"`
	MetodoPago  string          `json:"metodo_pago" validate:"required,oneof=EFECTIVO DEBITO CREDITO TRANSFERENCIA QR"`
	Monto       decimal.Decimal `json:"monto"       validate:"gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MontosPorMetodo struct {
	Efectivo        decimal.Decimal `json:"efectivo"`
	Debito          decimal.Decimal `json:"debito"`
	Credito         decimal.Decimal `json:"credito"`
	Transferencia   decimal.Decimal `json:"transferencia"`
	QR              decimal.Decimal `json:"qr"`
	CuentaCorriente decimal.Decimal `json:"cuenta_corriente"`
}

// ResumenCajaResponse is the running (or final) aggregate of one shift.
type ResumenCajaResponse struct {
	CantidadVentas       int             `json:"cantidad_ventas"`
	TotalBruto           decimal.Decimal `json:"total_bruto"`
	TotalDescuentos      decimal.Decimal `json:"total_descuentos"`
	TotalVentas          decimal.Decimal `json:"total_ventas"`
	PorMetodo            MontosPorMetodo `json:"por_metodo"`
	CantidadDevoluciones int             `json:"cantidad_devoluciones"`
	TotalDevoluciones    decimal.Decimal `json:"total_devoluciones"`
	DevolucionesEfectivo decimal.Decimal `json:"devoluciones_efectivo"`
	// Manual movements are informative; they never enter EfectivoEsperado.
	IngresosManuales decimal.Decimal `json:"ingresos_manuales"`
	EgresosManuales  decimal.Decimal `json:"egresos_manuales"`
	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
}

type SesionCajaResponse struct {
	ID                   string               `json:"id"`
	UsuarioID            string               `json:"usuario_id"`
	Usuario              string               `json:"usuario,omitempty"`
	Estado               string               `json:"estado"`
	MontoInicial         decimal.Decimal      `json:"monto_inicial"`
	NotasApertura        *string              `json:"notas_apertura"`
	OpenedAt             string               `json:"opened_at"`
	ClosedAt             *string              `json:"closed_at"`
	MontoCierre          *decimal.Decimal     `json:"monto_cierre"`
	MontoEsperado        *decimal.Decimal     `json:"monto_esperado"`
	Diferencia           *decimal.Decimal     `json:"diferencia"`
	TotalFacturado       decimal.Decimal      `json:"total_facturado"`
	TotalNoFacturado     decimal.Decimal      `json:"total_no_facturado"`
	Notas                *string              `json:"notas"`
	RequiereAutorizacion bool                 `json:"requiere_autorizacion"`
	Resumen              *ResumenCajaResponse `json:"resumen,omitempty"`
}

// CierreInfo is returned only by the close action.
type CierreInfo struct {
	HorasTrabajadas decimal.Decimal `json:"horas_trabajadas"`
	TicketPromedio  decimal.Decimal `json:"ticket_promedio"`
}

type CerrarCajaResponse struct {
	Sesion SesionCajaResponse `json:"sesion"`
	Cierre CierreInfo         `json:"cierre"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
