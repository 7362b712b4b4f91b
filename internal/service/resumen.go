package service

import (
	"vendimax/internal/dto"
	"vendimax/internal/model"

	"github.com/shopspring/decimal"
)

// Resumen aggregates the sales and refunds attached to one shift.
type Resumen struct {
	CantidadVentas       int
	TotalBruto           decimal.Decimal // Σ subtotal
	TotalDescuentos      decimal.Decimal
	TotalVentas          decimal.Decimal // Σ total, after discounts
	PorMetodo            map[string]decimal.Decimal
	CantidadDevoluciones int
	TotalDevoluciones    decimal.Decimal
	DevolucionesEfectivo decimal.Decimal
	Ingresos             decimal.Decimal
	Egresos              decimal.Decimal
	EfectivoEsperado     decimal.Decimal
}

// CalcularResumen derives a shift summary from committed data only.
//
// Every sale counts in full, including ones cancelled later: a cancellation
// shows up as a Devolucion in whatever shift was open when it happened.
// MIXTO sales spread their splits over the method buckets.
//
//	EfectivoEsperado = montoInicial + PorMetodo[EFECTIVO] − DevolucionesEfectivo
//
// Manual movements are reported but never enter EfectivoEsperado.
func CalcularResumen(montoInicial decimal.Decimal, ventas []model.Venta, devoluciones []model.Devolucion, movimientos []model.MovimientoCaja) Resumen {
	r := Resumen{
		TotalBruto:           decimal.Zero,
		TotalDescuentos:      decimal.Zero,
		TotalVentas:          decimal.Zero,
		PorMetodo:            make(map[string]decimal.Decimal, len(model.MetodosSimples)),
		TotalDevoluciones:    decimal.Zero,
		DevolucionesEfectivo: decimal.Zero,
		Ingresos:             decimal.Zero,
		Egresos:              decimal.Zero,
	}
	for _, m := range model.MetodosSimples {
		r.PorMetodo[m] = decimal.Zero
	}

	for _, v := range ventas {
		if v.Estado == model.VentaPendiente {
			continue
		}
		r.CantidadVentas++
		r.TotalBruto = r.TotalBruto.Add(v.Subtotal)
		r.TotalDescuentos = r.TotalDescuentos.Add(v.DescuentoMonto)
		r.TotalVentas = r.TotalVentas.Add(v.Total)
		if v.MetodoPago == model.MetodoMixto {
			for _, p := range v.Pagos {
				r.PorMetodo[p.Metodo] = r.PorMetodo[p.Metodo].Add(p.Monto)
			}
			continue
		}
		r.PorMetodo[v.MetodoPago] = r.PorMetodo[v.MetodoPago].Add(v.Total)
	}

	for _, d := range devoluciones {
		r.CantidadDevoluciones++
		r.TotalDevoluciones = r.TotalDevoluciones.Add(d.Monto)
		if d.Metodo == model.MetodoEfectivo {
			r.DevolucionesEfectivo = r.DevolucionesEfectivo.Add(d.Monto)
		}
	}

	for _, m := range movimientos {
		switch m.Tipo {
		case model.MovIngreso:
			r.Ingresos = r.Ingresos.Add(m.Monto)
		case model.MovEgreso:
			r.Egresos = r.Egresos.Add(m.Monto.Abs())
		}
	}

	r.EfectivoEsperado = montoInicial.Add(r.PorMetodo[model.MetodoEfectivo]).Sub(r.DevolucionesEfectivo)
	return r
}

func (r Resumen) toDTO() *dto.ResumenCajaResponse {
	return &dto.ResumenCajaResponse{
		CantidadVentas:  r.CantidadVentas,
		TotalBruto:      r.TotalBruto,
		TotalDescuentos: r.TotalDescuentos,
		TotalVentas:     r.TotalVentas,
		PorMetodo: dto.MontosPorMetodo{
			Efectivo:        r.PorMetodo[model.MetodoEfectivo],
			Debito:          r.PorMetodo[model.MetodoDebito],
			Credito:         r.PorMetodo[model.MetodoCredito],
			Transferencia:   r.PorMetodo[model.MetodoTransferencia],
			QR:              r.PorMetodo[model.MetodoQR],
			CuentaCorriente: r.PorMetodo[model.MetodoCuentaCorriente],
		},
		CantidadDevoluciones: r.CantidadDevoluciones,
		TotalDevoluciones:    r.TotalDevoluciones,
		DevolucionesEfectivo: r.DevolucionesEfectivo,
		IngresosManuales:     r.Ingresos,
		EgresosManuales:      r.Egresos,
		EfectivoEsperado:     r.EfectivoEsperado,
	}
}
