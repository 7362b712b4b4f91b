package service

import (
	"testing"

	"vendimax/internal/model"

	"github.com/stretchr/testify/assert"
)

func ventaResumen(metodo, subtotal, descuento, total, estado string, pagos ...model.VentaPago) model.Venta {
	return model.Venta{
		MetodoPago:     metodo,
		Subtotal:       dec(subtotal),
		DescuentoMonto: dec(descuento),
		Total:          dec(total),
		Estado:         estado,
		Pagos:          pagos,
	}
}

func TestCalcularResumen_SinMovimientos(t *testing.T) {
	r := CalcularResumen(dec("1000"), nil, nil, nil)

	assert.Zero(t, r.CantidadVentas)
	assert.True(t, r.TotalVentas.IsZero())
	assert.True(t, r.EfectivoEsperado.Equal(dec("1000")))
	for _, m := range model.MetodosSimples {
		assert.True(t, r.PorMetodo[m].IsZero(), m)
	}
}

func TestCalcularResumen_AgrupaPorMetodo(t *testing.T) {
	ventas := []model.Venta{
		ventaResumen(model.MetodoEfectivo, "500", "0", "500", model.VentaCompletada),
		ventaResumen(model.MetodoDebito, "220", "20", "200", model.VentaCompletada),
		ventaResumen(model.MetodoMixto, "300", "0", "300", model.VentaCompletada,
			model.VentaPago{Metodo: model.MetodoEfectivo, Monto: dec("100")},
			model.VentaPago{Metodo: model.MetodoQR, Monto: dec("200")},
		),
		ventaResumen(model.MetodoCuentaCorriente, "150", "0", "150", model.VentaCompletada),
		// Cancelled later: still part of the shift it was sold in.
		ventaResumen(model.MetodoEfectivo, "50", "0", "50", model.VentaAnulada),
		ventaResumen(model.MetodoEfectivo, "999", "0", "999", model.VentaPendiente),
	}

	r := CalcularResumen(dec("1000"), ventas, nil, nil)

	assert.Equal(t, 5, r.CantidadVentas)
	assert.True(t, r.TotalBruto.Equal(dec("1220")))
	assert.True(t, r.TotalDescuentos.Equal(dec("20")))
	assert.True(t, r.TotalVentas.Equal(dec("1200")))
	assert.True(t, r.PorMetodo[model.MetodoEfectivo].Equal(dec("650")))
	assert.True(t, r.PorMetodo[model.MetodoDebito].Equal(dec("200")))
	assert.True(t, r.PorMetodo[model.MetodoQR].Equal(dec("200")))
	assert.True(t, r.PorMetodo[model.MetodoCuentaCorriente].Equal(dec("150")))
	_, hayMixto := r.PorMetodo[model.MetodoMixto]
	assert.False(t, hayMixto)
	assert.True(t, r.EfectivoEsperado.Equal(dec("1650")))
}

func TestCalcularResumen_DevolucionesYMovimientosManuales(t *testing.T) {
	ventas := []model.Venta{ventaResumen(model.MetodoEfectivo, "500", "0", "500", model.VentaCompletada)}
	devoluciones := []model.Devolucion{
		{Metodo: model.MetodoEfectivo, Monto: dec("80")},
		{Metodo: model.MetodoDebito, Monto: dec("40")},
	}
	movimientos := []model.MovimientoCaja{
		{Tipo: model.MovApertura, Monto: dec("1000")},
		{Tipo: model.MovIngreso, Monto: dec("300")},
		{Tipo: model.MovEgreso, Monto: dec("-120")},
		{Tipo: model.MovVenta, Monto: dec("500")},
	}

	r := CalcularResumen(dec("1000"), ventas, devoluciones, movimientos)

	assert.Equal(t, 2, r.CantidadDevoluciones)
	assert.True(t, r.TotalDevoluciones.Equal(dec("120")))
	assert.True(t, r.DevolucionesEfectivo.Equal(dec("80")))
	assert.True(t, r.Ingresos.Equal(dec("300")))
	assert.True(t, r.Egresos.Equal(dec("120")))
	// Manual movements never enter the expected cash.
	assert.True(t, r.EfectivoEsperado.Equal(dec("1420")))

	d := r.toDTO()
	assert.True(t, d.IngresosManuales.Equal(dec("300")))
	assert.True(t, d.EgresosManuales.Equal(dec("120")))
	assert.True(t, d.PorMetodo.Efectivo.Equal(dec("500")))
	assert.True(t, d.EfectivoEsperado.Equal(dec("1420")))
}
