package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vendimax/internal/apierror"
	"vendimax/internal/dto"
	"vendimax/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func cerrarReq(monto string, notas *string) dto.CerrarCajaRequest {
	return dto.CerrarCajaRequest{MontoCierre: dec(monto), Notas: notas}
}

func TestCaja_CierreSinDiferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.abrirCaja(t, f.op, "1000")
	p := f.store.addProducto(f.tenant, "Producto", "500", 10, 0)
	_, err := f.ventas.RegistrarVenta(ctx, f.op, ventaReq(model.MetodoEfectivo, linea(p, 1)))
	require.NoError(t, err)

	activa, err := f.cajas.GetActiva(ctx, f.op)
	require.NoError(t, err)
	require.NotNil(t, activa)
	assert.True(t, activa.Resumen.EfectivoEsperado.Equal(dec("1500")))
	assert.Equal(t, 1, activa.Resumen.CantidadVentas)

	resp, err := f.cajas.Cerrar(ctx, f.op, cerrarReq("1500", nil))
	require.NoError(t, err)

	assert.Equal(t, model.CajaCerrada, resp.Sesion.Estado)
	assert.True(t, resp.Sesion.Diferencia.IsZero())
	assert.True(t, resp.Sesion.MontoEsperado.Equal(dec("1500")))
	assert.False(t, resp.Sesion.RequiereAutorizacion)
	assert.Nil(t, resp.Sesion.Notas)
	assert.True(t, resp.Sesion.TotalNoFacturado.Equal(dec("500")))
	assert.True(t, resp.Sesion.TotalFacturado.IsZero())
	assert.True(t, resp.Cierre.TicketPromedio.Equal(dec("500")))

	cierres := f.store.movimientosCaja(model.MovCierre)
	require.Len(t, cierres, 1)
	assert.True(t, cierres[0].Monto.IsZero())

	require.Len(t, f.jobs.reportes, 1)
	assert.Equal(t, resp.Sesion.ID, f.jobs.reportes[0].Sesion.ID)

	activa, err = f.cajas.GetActiva(ctx, f.op)
	require.NoError(t, err)
	assert.Nil(t, activa)
}

func TestCaja_DiferenciaRequiereNotasYAutorizacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	abierta := f.abrirCaja(t, f.op, "1000")
	p := f.store.addProducto(f.tenant, "Producto", "500", 10, 0)
	_, err := f.ventas.RegistrarVenta(ctx, f.op, ventaReq(model.MetodoEfectivo, linea(p, 1)))
	require.NoError(t, err)

	_, err = f.cajas.Cerrar(ctx, f.op, cerrarReq("1430", strPtr("   ")))
	e := requireRechazo(t, err, "diferencia_requiere_notas")
	assert.Equal(t, apierror.CodeReglaNegocio, e.Code)
	assert.True(t, e.Data["diferencia"].(decimal.Decimal).Equal(dec("-70")))
	assert.True(t, e.Data["monto_esperado"].(decimal.Decimal).Equal(dec("1500")))
	assert.Equal(t, true, e.Data["requiere_notas"])
	assert.Equal(t, model.CajaAbierta, f.store.sesion(uuid.MustParse(abierta.ID)).Estado)

	resp, err := f.cajas.Cerrar(ctx, f.op, cerrarReq("1430", strPtr("faltante en cambio")))
	require.NoError(t, err)
	assert.True(t, resp.Sesion.Diferencia.Equal(dec("-70")))
	assert.True(t, resp.Sesion.RequiereAutorizacion)
	require.NotNil(t, resp.Sesion.Notas)
	assert.Equal(t, "faltante en cambio", *resp.Sesion.Notas)

	cierres := f.store.movimientosCaja(model.MovCierre)
	require.Len(t, cierres, 1)
	assert.True(t, cierres[0].Monto.Equal(dec("-70")))
}

func TestCaja_UmbralDeAutorizacion(t *testing.T) {
	cases := []struct {
		declarado string
		requiere  bool
	}{
		{"1049.99", false},
		{"1050", true},
		{"950", true},
		{"1000.01", false},
	}
	for _, tc := range cases {
		t.Run(tc.declarado, func(t *testing.T) {
			f := newFixture(t)
			f.abrirCaja(t, f.op, "1000")
			resp, err := f.cajas.Cerrar(context.Background(), f.op, cerrarReq(tc.declarado, strPtr("conteo")))
			require.NoError(t, err)
			assert.Equal(t, tc.requiere, resp.Sesion.RequiereAutorizacion)
		})
	}
}

func TestCaja_AbrirDosVecesSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	primera := f.abrirCaja(t, f.op, "100")

	_, err := f.cajas.Abrir(ctx, f.op, dto.AbrirCajaRequest{MontoInicial: dec("50")})
	e := requireRechazo(t, err, "caja_ya_abierta")
	assert.Equal(t, primera.ID, e.Data["sesion_caja_id"])

	// Another operator of the same tenant opens independently.
	_, err = f.cajas.Abrir(ctx, f.operador("cajero"), dto.AbrirCajaRequest{MontoInicial: dec("50")})
	require.NoError(t, err)
}

func TestCaja_AperturasConcurrentesDejanUnaSola(t *testing.T) {
	f := newFixture(t)

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.cajas.Abrir(context.Background(), f.op, dto.AbrirCajaRequest{MontoInicial: dec("100")})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, apierror.Is(err, "caja_ya_abierta"), "rechazo inesperado: %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, f.store.movimientosCaja(model.MovApertura), 1)
}

func TestCaja_CerrarRechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cajas.Cerrar(ctx, f.op, cerrarReq("0", nil))
	requireRechazo(t, err, "caja_no_encontrada")

	_, err = f.cajas.Cerrar(ctx, f.op, dto.CerrarCajaRequest{SesionCajaID: uuid.NewString(), MontoCierre: dec("0")})
	requireRechazo(t, err, "caja_no_encontrada")

	sesion := f.abrirCaja(t, f.op, "100")
	req := dto.CerrarCajaRequest{SesionCajaID: sesion.ID, MontoCierre: dec("100")}

	otroComercio := Operador{UsuarioID: uuid.New(), TenantID: uuid.New(), Rol: "administrador"}
	_, err = f.cajas.Cerrar(ctx, otroComercio, req)
	requireRechazo(t, err, "caja_no_encontrada")

	_, err = f.cajas.Cerrar(ctx, f.operador("cajero"), req)
	requireRechazo(t, err, "caja_ajena")

	_, err = f.cajas.Cerrar(ctx, f.operador("supervisor"), req)
	require.NoError(t, err)

	_, err = f.cajas.Cerrar(ctx, f.op, req)
	requireRechazo(t, err, "caja_cerrada")
	assert.Len(t, f.store.movimientosCaja(model.MovCierre), 1)
}

func TestCaja_MovimientosManualesNoAfectanEfectivoEsperado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.cajas.RegistrarMovimiento(ctx, f.op, dto.MovimientoManualRequest{
		Tipo: model.MovIngreso, MetodoPago: model.MetodoEfectivo, Monto: dec("10"), Descripcion: "cambio",
	})
	requireRechazo(t, err, "sin_caja_abierta")

	f.abrirCaja(t, f.op, "1000")
	require.NoError(t, f.cajas.RegistrarMovimiento(ctx, f.op, dto.MovimientoManualRequest{
		Tipo: model.MovIngreso, MetodoPago: model.MetodoEfectivo, Monto: dec("300"), Descripcion: "aporte de cambio",
	}))
	require.NoError(t, f.cajas.RegistrarMovimiento(ctx, f.op, dto.MovimientoManualRequest{
		Tipo: model.MovEgreso, MetodoPago: model.MetodoEfectivo, Monto: dec("120"), Descripcion: "pago a proveedor",
	}))

	egresos := f.store.movimientosCaja(model.MovEgreso)
	require.Len(t, egresos, 1)
	assert.True(t, egresos[0].Monto.Equal(dec("-120")))

	activa, err := f.cajas.GetActiva(ctx, f.op)
	require.NoError(t, err)
	assert.True(t, activa.Resumen.IngresosManuales.Equal(dec("300")))
	assert.True(t, activa.Resumen.EgresosManuales.Equal(dec("120")))
	assert.True(t, activa.Resumen.EfectivoEsperado.Equal(dec("1000")))

	err = f.cajas.RegistrarMovimiento(ctx, f.op, dto.MovimientoManualRequest{
		Tipo: "RETIRO", MetodoPago: model.MetodoEfectivo, Monto: dec("1"), Descripcion: "invalido",
	})
	requireRechazo(t, err, "entrada_invalida")
}

func TestCaja_HorasTrabajadas(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	op := Operador{UsuarioID: uuid.New(), TenantID: tenant, Rol: "cajero"}
	ahora := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := NewCajaService(store.repos(), nil, CajaConfig{
		UmbralAutorizacion: decimal.NewFromInt(50),
		MaxReintentos:      3,
		Reloj:              func() time.Time { return ahora },
	})
	ctx := context.Background()

	_, err := svc.Abrir(ctx, op, dto.AbrirCajaRequest{MontoInicial: dec("0")})
	require.NoError(t, err)
	ahora = ahora.Add(7*time.Hour + 45*time.Minute)

	resp, err := svc.Cerrar(ctx, op, cerrarReq("0", nil))
	require.NoError(t, err)
	assert.True(t, resp.Cierre.HorasTrabajadas.Equal(dec("7.8")), resp.Cierre.HorasTrabajadas.String())
	assert.True(t, resp.Cierre.TicketPromedio.IsZero())
	require.NotNil(t, resp.Sesion.ClosedAt)
	assert.Equal(t, "2026-03-10T15:45:00Z", *resp.Sesion.ClosedAt)
}

func TestCaja_HistorialYExportacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ahora := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f.cajas = NewCajaService(f.store.repos(), f.jobs, CajaConfig{
		UmbralAutorizacion: decimal.NewFromInt(50),
		Reloj: func() time.Time {
			ahora = ahora.Add(time.Hour)
			return ahora
		},
	})

	for i := 0; i < 3; i++ {
		f.abrirCaja(t, f.op, "100")
		_, err := f.cajas.Cerrar(ctx, f.op, cerrarReq("100", nil))
		require.NoError(t, err)
	}
	// Open shifts are not part of the history.
	f.abrirCaja(t, f.op, "100")
	// Nor are other tenants' shifts.
	otro := Operador{UsuarioID: uuid.New(), TenantID: uuid.New(), Rol: "cajero"}
	_, err := f.cajas.Abrir(ctx, otro, dto.AbrirCajaRequest{MontoInicial: dec("1")})
	require.NoError(t, err)
	_, err = f.cajas.Cerrar(ctx, otro, cerrarReq("1", nil))
	require.NoError(t, err)

	h, err := f.cajas.Historial(ctx, f.op, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, h.Total)
	require.Len(t, h.Data, 2)
	assert.Greater(t, *h.Data[0].ClosedAt, *h.Data[1].ClosedAt)
	require.NotNil(t, h.Data[0].Resumen)
	assert.True(t, h.Data[0].Resumen.EfectivoEsperado.Equal(dec("100")))

	h, err = f.cajas.Historial(ctx, f.op, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Page)
	assert.Equal(t, 50, h.Limit)

	rows, err := f.cajas.ExportarHistorial(ctx, f.op)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestCaja_ReporteDeOtroComercio(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja(t, f.op, "100")
	otro := Operador{UsuarioID: uuid.New(), TenantID: uuid.New(), Rol: "administrador"}

	_, err := f.cajas.ObtenerReporte(context.Background(), otro, uuid.MustParse(sesion.ID))
	requireRechazo(t, err, "caja_no_encontrada")

	_, err = f.cajas.ObtenerReporte(context.Background(), f.op, uuid.New())
	requireRechazo(t, err, "caja_no_encontrada")
}
