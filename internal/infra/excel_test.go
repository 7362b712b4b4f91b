package infra

import (
	"bytes"
	"testing"

	"vendimax/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteHistorialCajaXLSX(t *testing.T) {
	esperado := decimal.NewFromInt(1500)
	diferencia := decimal.NewFromInt(-20)
	notas := "faltante"
	rows := []dto.SesionCajaResponse{
		{
			ID:            "s-1",
			Usuario:       "Ana",
			OpenedAt:      "2026-03-01T09:00:00Z",
			MontoInicial:  decimal.NewFromInt(1000),
			MontoEsperado: &esperado,
			Diferencia:    &diferencia,
			Notas:         &notas,
			Resumen:       &dto.ResumenCajaResponse{CantidadVentas: 4, TotalVentas: decimal.NewFromInt(500)},
		},
		{ID: "s-2", MontoInicial: decimal.Zero},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistorialCajaXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, _ := f.GetCellValue(sheetHistorial, "A1")
	assert.Equal(t, "Sesion", v)
	v, _ = f.GetCellValue(sheetHistorial, "B2")
	assert.Equal(t, "Ana", v)
	v, _ = f.GetCellValue(sheetHistorial, "I2")
	assert.Equal(t, "4", v)
	v, _ = f.GetCellValue(sheetHistorial, "M2")
	assert.Equal(t, "faltante", v)
	v, _ = f.GetCellValue(sheetHistorial, "F3")
	assert.Equal(t, "", v)
}
