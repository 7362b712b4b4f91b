package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

type ProductoBajoStock struct {
	// ID is the product or variant id whose stock fell.
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}

// AlertaStockPayload is enqueued after a sale leaves stock at or below minimum.
type AlertaStockPayload struct {
	TenantID     string              `json:"tenant_id"`
	VentaID      string              `json:"venta_id"`
	NumeroTicket int                 `json:"numero_ticket"`
	Productos    []ProductoBajoStock `json:"productos"`
}

// AlertaStockWorker turns low-stock alerts into mail for the configured address.
type AlertaStockWorker struct {
	emailer      Emailer
	destinatario string
}

func NewAlertaStockWorker(emailer Emailer, destinatario string) *AlertaStockWorker {
	return &AlertaStockWorker{emailer: emailer, destinatario: destinatario}
}

func (w *AlertaStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p AlertaStockPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("alerta_stock: invalid payload")
		return nil
	}
	for _, prod := range p.Productos {
		log.Warn().
			Str("tenant_id", p.TenantID).
			Str("producto", prod.Nombre).
			Int("stock_actual", prod.StockActual).
			Int("stock_minimo", prod.StockMinimo).
			Msg("stock bajo minimo")
	}
	if w.destinatario == "" || len(p.Productos) == 0 {
		return nil
	}
	return w.emailer.EnqueueEmail(ctx, EmailJobPayload{
		To:      []string{w.destinatario},
		Subject: fmt.Sprintf("Stock bajo tras venta #%d", p.NumeroTicket),
		Body:    cuerpoAlertaStock(p),
	})
}

func cuerpoAlertaStock(p AlertaStockPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "La venta #%d dejo los siguientes productos en o bajo su stock minimo:\n\n", p.NumeroTicket)
	for _, prod := range p.Productos {
		fmt.Fprintf(&b, "- %s: %d (minimo %d)\n", prod.Nombre, prod.StockActual, prod.StockMinimo)
	}
	return b.String()
}
