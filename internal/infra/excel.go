package infra

import (
	"io"

	"vendimax/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetHistorial = "Cierres"

var historialHeaders = []string{
	"Sesion", "Operador", "Apertura", "Cierre", "Monto inicial", "Esperado",
	"Declarado", "Diferencia", "Ventas", "Total ventas", "Devoluciones",
	"Requiere autorizacion", "Notas",
}

// WriteHistorialCajaXLSX writes the closed-shift history as a spreadsheet.
func WriteHistorialCajaXLSX(w io.Writer, sesiones []dto.SesionCajaResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", sheetHistorial); err != nil {
		return err
	}
	for i, h := range historialHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetHistorial, cell, h)
		f.SetCellStyle(sheetHistorial, cell, cell, headerStyle)
	}

	for r, s := range sesiones {
		values := []interface{}{
			s.ID,
			s.Usuario,
			s.OpenedAt,
			strOrEmpty(s.ClosedAt),
			s.MontoInicial.InexactFloat64(),
			decOrEmpty(s.MontoEsperado),
			decOrEmpty(s.MontoCierre),
			decOrEmpty(s.Diferencia),
			0,
			0.0,
			0.0,
			s.RequiereAutorizacion,
			strOrEmpty(s.Notas),
		}
		if s.Resumen != nil {
			values[8] = s.Resumen.CantidadVentas
			values[9] = s.Resumen.TotalVentas.InexactFloat64()
			values[10] = s.Resumen.TotalDevoluciones.InexactFloat64()
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(sheetHistorial, cell, v)
		}
	}

	f.AutoFilter(sheetHistorial, "A1:M1", []excelize.AutoFilterOptions{})
	f.SetPanes(sheetHistorial, &excelize.Panes{Freeze: true, Split: true, YSplit: 1})
	_, err = f.WriteTo(w)
	return err
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decOrEmpty(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}
