package infra

// pdf.go: closing report of a cash shift, rendered with go-pdf/fpdf.
// One A4 page with:
//   - shift header (operator, opened/closed times, hours worked)
//   - totals per payment method
//   - refunds and manual movements
//   - expected vs declared cash and the difference
//
// The output file is saved to storagePath/cierre_{sesion_id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"vendimax/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateCierrePDF renders the closing report of a shift and returns the
// path of the written file.
func GenerateCierrePDF(sesion dto.SesionCajaResponse, cierre dto.CierreInfo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", sesion.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	labelW := contentW * 0.6
	valueW := contentW * 0.4

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, "Cierre de caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	operador := sesion.Usuario
	if operador == "" {
		operador = sesion.UsuarioID
	}
	pdf.CellFormat(contentW, 5, "Operador: "+operador, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Apertura: "+sesion.OpenedAt, "", 1, "L", false, 0, "")
	if sesion.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+*sesion.ClosedAt, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Horas trabajadas: "+cierre.HorasTrabajadas.String(), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	row := func(label string, v decimal.Decimal) {
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, "$"+v.StringFixed(2), "", 1, "R", false, 0, "")
	}
	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}

	// ── Ventas ────────────────────────────────────────────────────────────────
	if r := sesion.Resumen; r != nil {
		section(fmt.Sprintf("Ventas (%d)", r.CantidadVentas))
		row("Total bruto", r.TotalBruto)
		row("Descuentos", r.TotalDescuentos)
		row("Total ventas", r.TotalVentas)
		row("Ticket promedio", cierre.TicketPromedio)

		section("Por medio de pago")
		row("Efectivo", r.PorMetodo.Efectivo)
		row("Debito", r.PorMetodo.Debito)
		row("Credito", r.PorMetodo.Credito)
		row("Transferencia", r.PorMetodo.Transferencia)
		row("QR", r.PorMetodo.QR)
		row("Cuenta corriente", r.PorMetodo.CuentaCorriente)

		section(fmt.Sprintf("Devoluciones (%d)", r.CantidadDevoluciones))
		row("Total devuelto", r.TotalDevoluciones)
		row("Devuelto en efectivo", r.DevolucionesEfectivo)

		section("Movimientos manuales")
		row("Ingresos", r.IngresosManuales)
		row("Egresos", r.EgresosManuales)
	}

	// ── Arqueo ───────────────────────────────────────────────────────────────
	section("Arqueo de efectivo")
	row("Monto inicial", sesion.MontoInicial)
	if sesion.MontoEsperado != nil {
		row("Efectivo esperado", *sesion.MontoEsperado)
	}
	if sesion.MontoCierre != nil {
		row("Efectivo declarado", *sesion.MontoCierre)
	}
	if sesion.Diferencia != nil {
		pdf.SetFont("Helvetica", "B", 10)
		row("Diferencia", *sesion.Diferencia)
		pdf.SetFont("Helvetica", "", 9)
	}
	if sesion.RequiereAutorizacion {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "REQUIERE AUTORIZACION DE SUPERVISOR", "", 1, "C", false, 0, "")
	}
	if sesion.Notas != nil && *sesion.Notas != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, "Notas: "+*sesion.Notas, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
