package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"vendimax/internal/dto"
	"vendimax/internal/infra"

	"github.com/rs/zerolog/log"
)

// ReporteCierrePayload carries the committed snapshot of a closed shift.
type ReporteCierrePayload struct {
	TenantID string                 `json:"tenant_id"`
	Sesion   dto.SesionCajaResponse `json:"sesion"`
	Cierre   dto.CierreInfo         `json:"cierre"`
}

// ReporteCierreWorker renders the closing PDF and mails it when an address is configured.
type ReporteCierreWorker struct {
	emailer      Emailer
	storagePath  string
	destinatario string
}

func NewReporteCierreWorker(emailer Emailer, storagePath, destinatario string) *ReporteCierreWorker {
	return &ReporteCierreWorker{emailer: emailer, storagePath: storagePath, destinatario: destinatario}
}

func (w *ReporteCierreWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p ReporteCierrePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("reporte_cierre: invalid payload")
		return nil
	}

	path, err := infra.GenerateCierrePDF(p.Sesion, p.Cierre, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("sesion_caja_id", p.Sesion.ID).Str("path", path).Msg("reporte_cierre: PDF generado")

	if w.destinatario == "" {
		return nil
	}
	subject := fmt.Sprintf("Cierre de caja %s", p.Sesion.ID)
	if p.Sesion.RequiereAutorizacion {
		subject = "[REQUIERE AUTORIZACION] " + subject
	}
	diferencia := "0.00"
	if p.Sesion.Diferencia != nil {
		diferencia = p.Sesion.Diferencia.StringFixed(2)
	}
	return w.emailer.EnqueueEmail(ctx, EmailJobPayload{
		To:         []string{w.destinatario},
		Subject:    subject,
		Body:       fmt.Sprintf("Se adjunta el reporte de cierre. Diferencia: $%s.", diferencia),
		AttachPath: path,
	})
}
