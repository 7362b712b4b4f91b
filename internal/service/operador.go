package service

import (
	"context"
	"time"

	"vendimax/internal/apierror"
	"vendimax/internal/repository"
	"vendimax/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Operador is the already-authenticated actor behind a request.
type Operador struct {
	UsuarioID uuid.UUID
	TenantID  uuid.UUID
	Rol       string
}

// EsSupervisor reports whether the operator may act on other operators' shifts.
func (o Operador) EsSupervisor() bool {
	return o.Rol == "supervisor" || o.Rol == "administrador"
}

// Repos groups the repositories the transactional services share.
type Repos struct {
	Tx        repository.TxRunner
	Ventas    repository.VentaRepository
	Productos repository.ProductoRepository
	Clientes  repository.ClienteRepository
	Cajas     repository.CajaRepository
	MovStock  repository.MovimientoStockRepository
	Auditoria repository.AuditRepository
}

// AlertasStock receives low-stock notifications after a sale commits.
type AlertasStock interface {
	EnqueueAlertaStock(ctx context.Context, payload worker.AlertaStockPayload) error
}

// ReportesCierre receives the closing report of a shift after it commits.
type ReportesCierre interface {
	EnqueueReporteCierre(ctx context.Context, payload worker.ReporteCierrePayload) error
}

const reasonConflicto = "conflicto_concurrente"

// conReintentos runs fn until it succeeds, fails with something other than a
// concurrency conflict, or maxIntentos is reached. Exhaustion surfaces as a
// retryable CONFLICTO rejection.
func conReintentos(ctx context.Context, maxIntentos int, op string, fn func() error) error {
	if maxIntentos < 1 {
		maxIntentos = 1
	}
	var err error
	for intento := 1; intento <= maxIntentos; intento++ {
		err = fn()
		if err == nil || !repository.IsConflict(err) {
			return err
		}
		log.Warn().Err(err).Str("op", op).Int("intento", intento).Msg("conflicto concurrente, reintentando")
		if intento < maxIntentos {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(intento) * 20 * time.Millisecond):
			}
		}
	}
	return apierror.Conflicto(reasonConflicto, err)
}
