package service

import (
	"math"

	"vendimax/internal/apierror"
	"vendimax/internal/dto"
	"vendimax/internal/model"
	"vendimax/internal/numeric"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LineaTotal is the server-side amount of one cart line.
type LineaTotal struct {
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
	// Excluida marks a line whose price or amount was not a finite number.
	// It is persisted at zero and does not count towards the subtotal.
	Excluida bool
}

// Totales is the authoritative recomputation of a cart.
type Totales struct {
	Lineas         []LineaTotal
	Subtotal       decimal.Decimal
	DescuentoMonto decimal.Decimal
	TipoDescuento  string
	Total          decimal.Decimal
}

var cien = decimal.NewFromInt(100)

// CalcularTotales recomputes every amount of a cart from the claimed unit
// prices and quantities. Claimed line subtotals are only compared, never used.
//
// Guarantees on success:
//
//	Lineas[i].Subtotal == Cantidad × Lineas[i].PrecioUnitario
//	Subtotal           == Σ Lineas[i].Subtotal
//	Total              == max(0, Subtotal − DescuentoMonto)
func CalcularTotales(items []dto.ItemVentaRequest, descuento interface{}, tipo string) (*Totales, error) {
	if tipo == "" {
		tipo = model.DescuentoFijo
	}
	t := &Totales{
		Lineas:        make([]LineaTotal, len(items)),
		Subtotal:      decimal.Zero,
		TipoDescuento: tipo,
	}

	// suma mirrors Subtotal in float64 so overflow shows up as ±Inf.
	suma := 0.0
	for i, it := range items {
		if it.PrecioUnitario == nil {
			return nil, apierror.Validacion("precio_requerido", "la linea %d no tiene precio_unitario", i+1).With("linea", i+1)
		}
		precio, ok := numeric.Parse(it.PrecioUnitario)
		linea := precio * float64(it.Cantidad)
		if !ok || !numeric.IsFinite(linea) {
			log.Warn().
				Int("linea", i+1).
				Str("producto_id", it.ProductoID).
				Interface("precio_unitario", it.PrecioUnitario).
				Msg("linea con importe no finito, excluida del subtotal")
			t.Lineas[i] = LineaTotal{PrecioUnitario: decimal.Zero, Subtotal: decimal.Zero, Excluida: true}
			continue
		}
		if precio < 0 {
			return nil, apierror.Validacion("precio_negativo", "la linea %d tiene precio negativo", i+1).With("linea", i+1)
		}

		suma += linea
		pu := numeric.Money(precio)
		sub := pu.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		t.Lineas[i] = LineaTotal{PrecioUnitario: pu, Subtotal: sub}
		t.Subtotal = t.Subtotal.Add(sub)

		if claimed, ok := numeric.Parse(it.Subtotal); ok && !numeric.Equal(numeric.Money(claimed), sub) {
			log.Warn().
				Int("linea", i+1).
				Str("declarado", numeric.Money(claimed).String()).
				Str("calculado", sub.String()).
				Msg("subtotal de linea declarado no coincide, se usa el calculado")
		}
	}
	if !numeric.IsFinite(suma) {
		return nil, apierror.Aritmetica("subtotal_no_finito", "el subtotal calculado no es un numero finito")
	}

	d := numeric.ToFinite(descuento)
	if d < 0 {
		return nil, apierror.Validacion("descuento_negativo", "el descuento no puede ser negativo")
	}
	var descFloat float64
	switch tipo {
	case model.DescuentoPorcentaje:
		// Above 100 the amount exceeds the subtotal and the total clamps to zero.
		descFloat = suma * d / 100
		t.DescuentoMonto = t.Subtotal.Mul(decimal.NewFromFloat(d)).Div(cien).Round(2)
	default:
		descFloat = d
		t.DescuentoMonto = numeric.Money(d)
	}

	if total := math.Max(0, suma-descFloat); !numeric.IsFinite(total) {
		return nil, apierror.Aritmetica("total_no_finito", "el total calculado no es un numero finito")
	}
	t.Total = decimal.Max(decimal.Zero, t.Subtotal.Sub(t.DescuentoMonto))
	return t, nil
}
