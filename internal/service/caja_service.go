package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendimax/internal/apierror"
	"vendimax/internal/dto"
	"vendimax/internal/model"
	"vendimax/internal/numeric"
	"vendimax/internal/repository"
	"vendimax/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, op Operador, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	// GetActiva returns the operator's open shift with its running summary, or nil.
	GetActiva(ctx context.Context, op Operador) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, op Operador, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, op Operador, req dto.MovimientoManualRequest) error
	ObtenerReporte(ctx context.Context, op Operador, sesionID uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, op Operador, page, limit int) (*dto.HistorialCajaResponse, error)
	ExportarHistorial(ctx context.Context, op Operador) ([]dto.SesionCajaResponse, error)
}

type CajaConfig struct {
	// UmbralAutorizacion: a close whose |diferencia| reaches it needs supervisor sign-off.
	UmbralAutorizacion decimal.Decimal
	MaxReintentos      int
	// Reloj defaults to time.Now.
	Reloj func() time.Time
}

const maxExportSesiones = 1000

type cajaService struct {
	repos    Repos
	reportes ReportesCierre
	cfg      CajaConfig
}

// NewCajaService builds the cash register engine. reportes may be nil.
func NewCajaService(repos Repos, reportes ReportesCierre, cfg CajaConfig) CajaService {
	if cfg.Reloj == nil {
		cfg.Reloj = time.Now
	}
	return &cajaService{repos: repos, reportes: reportes, cfg: cfg}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// One ABIERTA shift per operator. The per-operator advisory lock serializes
// concurrent opens; the partial unique index is the backstop.

func (s *cajaService) Abrir(ctx context.Context, op Operador, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, apierror.Validacion("entrada_invalida", "datos de apertura invalidos").With("campos", dto.FieldErrors(err))
	}

	var sesion *model.SesionCaja
	err := conReintentos(ctx, s.cfg.MaxReintentos, "abrir_caja", func() error {
		return s.repos.Tx.RunInTx(ctx, func(tx *gorm.DB) error {
			if err := s.repos.Cajas.LockOperadorTx(ctx, tx, op.UsuarioID); err != nil {
				return err
			}
			existente, err := s.repos.Cajas.FindSesionAbierta(ctx, tx, op.UsuarioID)
			if err != nil {
				return err
			}
			if existente != nil {
				return errCajaYaAbierta(existente.ID)
			}

			now := s.cfg.Reloj()
			sesion = &model.SesionCaja{
				ID:            uuid.New(),
				TenantID:      op.TenantID,
				UsuarioID:     op.UsuarioID,
				MontoInicial:  req.MontoInicial.Round(2),
				NotasApertura: req.Notas,
				Estado:        model.CajaAbierta,
				OpenedAt:      now,
			}
			if err := s.repos.Cajas.CreateSesion(ctx, tx, sesion); err != nil {
				if repository.IsUniqueViolation(err) {
					return errCajaYaAbierta(uuid.Nil)
				}
				return err
			}

			efectivo := model.MetodoEfectivo
			return s.repos.Cajas.CreateMovimiento(ctx, tx, &model.MovimientoCaja{
				ID:           uuid.New(),
				TenantID:     op.TenantID,
				UsuarioID:    op.UsuarioID,
				SesionCajaID: &sesion.ID,
				Tipo:         model.MovApertura,
				MetodoPago:   &efectivo,
				Monto:        sesion.MontoInicial,
				Descripcion:  "Apertura de caja",
				CreatedAt:    now,
			})
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sesion_caja_id", sesion.ID.String()).
		Str("usuario_id", op.UsuarioID.String()).
		Str("monto_inicial", sesion.MontoInicial.String()).
		Msg("caja abierta")

	res := CalcularResumen(sesion.MontoInicial, nil, nil, nil)
	return sesionToResponse(sesion, &res), nil
}

func errCajaYaAbierta(id uuid.UUID) *apierror.Error {
	e := apierror.ReglaNegocio("caja_ya_abierta", "el operador ya tiene una caja abierta")
	if id != uuid.Nil {
		e.With("sesion_caja_id", id.String())
	}
	return e
}

// ── GetActiva ─────────────────────────────────────────────────────────────────

func (s *cajaService) GetActiva(ctx context.Context, op Operador) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repos.Cajas.FindSesionAbierta(ctx, nil, op.UsuarioID)
	if err != nil || sesion == nil {
		return nil, err
	}
	res, err := s.resumen(ctx, nil, sesion)
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion, &res), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// 1. Lock the shift row; it must exist, belong to the tenant and be ABIERTA
// 2. Recompute the summary from committed sales and refunds
// 3. diferencia = declared − expected cash; non-zero requires notes
// 4. Persist closing data + CIERRE movement, COMMIT
// 5. (async) closing report

func (s *cajaService) Cerrar(ctx context.Context, op Operador, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, apierror.Validacion("entrada_invalida", "datos de cierre invalidos").With("campos", dto.FieldErrors(err))
	}

	var resp *dto.CerrarCajaResponse
	err := conReintentos(ctx, s.cfg.MaxReintentos, "cerrar_caja", func() error {
		return s.repos.Tx.RunInTx(ctx, func(tx *gorm.DB) error {
			r, err := s.cerrarTx(ctx, tx, op, req)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	ev := log.Info()
	if resp.Sesion.RequiereAutorizacion {
		ev = log.Warn()
	}
	ev.Str("sesion_caja_id", resp.Sesion.ID).
		Str("diferencia", resp.Sesion.Diferencia.String()).
		Bool("requiere_autorizacion", resp.Sesion.RequiereAutorizacion).
		Msg("caja cerrada")

	if s.reportes != nil {
		payload := worker.ReporteCierrePayload{
			TenantID: op.TenantID.String(),
			Sesion:   resp.Sesion,
			Cierre:   resp.Cierre,
		}
		if err := s.reportes.EnqueueReporteCierre(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sesion_caja_id", resp.Sesion.ID).Msg("no se pudo encolar reporte de cierre")
		}
	}
	return resp, nil
}

func (s *cajaService) cerrarTx(ctx context.Context, tx *gorm.DB, op Operador, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error) {
	var sesionID uuid.UUID
	if req.SesionCajaID != "" {
		sesionID = uuid.MustParse(req.SesionCajaID)
	} else {
		abierta, err := s.repos.Cajas.FindSesionAbierta(ctx, tx, op.UsuarioID)
		if err != nil {
			return nil, err
		}
		if abierta == nil {
			return nil, apierror.Referencia("caja_no_encontrada", "el operador no tiene caja abierta")
		}
		sesionID = abierta.ID
	}

	sesion, err := s.repos.Cajas.LockSesionTx(ctx, tx, sesionID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sesion.TenantID != op.TenantID) {
		return nil, apierror.Referencia("caja_no_encontrada", "sesion de caja %s no encontrada", sesionID)
	}
	if err != nil {
		return nil, err
	}
	if sesion.UsuarioID != op.UsuarioID && !op.EsSupervisor() {
		return nil, apierror.ReglaNegocio("caja_ajena", "solo el operador de la caja o un supervisor puede cerrarla")
	}
	if sesion.Estado == model.CajaCerrada {
		return nil, apierror.ReglaNegocio("caja_cerrada", "la sesion de caja ya esta cerrada")
	}

	res, err := s.resumen(ctx, tx, sesion)
	if err != nil {
		return nil, err
	}

	montoCierre := req.MontoCierre.Round(2)
	esperado := res.EfectivoEsperado.Round(2)
	diferencia := montoCierre.Sub(esperado)
	notas := ""
	if req.Notas != nil {
		notas = strings.TrimSpace(*req.Notas)
	}
	if !diferencia.IsZero() && notas == "" {
		return nil, apierror.ReglaNegocio("diferencia_requiere_notas", "el cierre tiene una diferencia de %s y requiere notas", diferencia.StringFixed(2)).
			With("diferencia", diferencia).
			With("monto_esperado", esperado).
			With("requiere_notas", true)
	}

	now := s.cfg.Reloj()
	sesion.Estado = model.CajaCerrada
	sesion.ClosedAt = &now
	sesion.MontoCierre = &montoCierre
	sesion.MontoEsperado = &esperado
	sesion.Diferencia = &diferencia
	sesion.TotalEfectivo = res.PorMetodo[model.MetodoEfectivo]
	sesion.TotalDebito = res.PorMetodo[model.MetodoDebito]
	sesion.TotalCredito = res.PorMetodo[model.MetodoCredito]
	sesion.TotalTransferencia = res.PorMetodo[model.MetodoTransferencia]
	sesion.TotalQR = res.PorMetodo[model.MetodoQR]
	sesion.TotalCuentaCorriente = res.PorMetodo[model.MetodoCuentaCorriente]
	sesion.TotalVentas = res.TotalVentas
	sesion.TotalDevoluciones = res.TotalDevoluciones
	sesion.TotalFacturado = decimal.Zero
	sesion.TotalNoFacturado = res.TotalVentas.Sub(res.TotalDevoluciones)
	sesion.CantidadVentas = res.CantidadVentas
	sesion.CantidadDevoluciones = res.CantidadDevoluciones
	if notas != "" {
		sesion.Notas = &notas
	}
	sesion.RequiereAutorizacion = diferencia.Abs().GreaterThanOrEqual(s.cfg.UmbralAutorizacion)

	if err := s.repos.Cajas.UpdateSesion(ctx, tx, sesion); err != nil {
		return nil, err
	}

	efectivo := model.MetodoEfectivo
	if err := s.repos.Cajas.CreateMovimiento(ctx, tx, &model.MovimientoCaja{
		ID:           uuid.New(),
		TenantID:     sesion.TenantID,
		UsuarioID:    op.UsuarioID,
		SesionCajaID: &sesion.ID,
		Tipo:         model.MovCierre,
		MetodoPago:   &efectivo,
		Monto:        diferencia,
		Descripcion:  fmt.Sprintf("Cierre de caja: declarado %s, esperado %s", montoCierre.StringFixed(2), esperado.StringFixed(2)),
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	horas := decimal.NewFromFloat(now.Sub(sesion.OpenedAt).Hours()).Round(1)
	if horas.IsNegative() {
		horas = decimal.Zero
	}
	return &dto.CerrarCajaResponse{
		Sesion: *sesionToResponse(sesion, &res),
		Cierre: dto.CierreInfo{
			HorasTrabajadas: horas,
			TicketPromedio:  numeric.SafeDiv(res.TotalVentas, decimal.NewFromInt(int64(res.CantidadVentas))).Round(2),
		},
	}, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Ingreso / egreso manual. Reported in the summary, never part of the
// expected cash. Movements are immutable: no Update/Delete.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, op Operador, req dto.MovimientoManualRequest) error {
	if err := dto.Validate(req); err != nil {
		return apierror.Validacion("entrada_invalida", "datos de movimiento invalidos").With("campos", dto.FieldErrors(err))
	}
	monto := req.Monto.Round(2)
	if req.Tipo == model.MovEgreso {
		monto = monto.Neg()
	}
	return s.repos.Tx.RunInTx(ctx, func(tx *gorm.DB) error {
		sesion, err := s.repos.Cajas.FindSesionAbiertaForShare(ctx, tx, op.UsuarioID)
		if err != nil {
			return err
		}
		if sesion == nil {
			return apierror.ReglaNegocio("sin_caja_abierta", "no hay caja abierta para registrar el movimiento")
		}
		metodo := req.MetodoPago
		return s.repos.Cajas.CreateMovimiento(ctx, tx, &model.MovimientoCaja{
			ID:           uuid.New(),
			TenantID:     op.TenantID,
			UsuarioID:    op.UsuarioID,
			SesionCajaID: &sesion.ID,
			Tipo:         req.Tipo,
			MetodoPago:   &metodo,
			Monto:        monto,
			Descripcion:  req.Descripcion,
			CreatedAt:    s.cfg.Reloj(),
		})
	})
}

// ── ObtenerReporte ────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerReporte(ctx context.Context, op Operador, sesionID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repos.Cajas.FindSesionByID(ctx, sesionID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sesion.TenantID != op.TenantID) {
		return nil, apierror.Referencia("caja_no_encontrada", "sesion de caja %s no encontrada", sesionID)
	}
	if err != nil {
		return nil, err
	}
	res, err := s.resumen(ctx, nil, sesion)
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion, &res), nil
}

// ── Historial ─────────────────────────────────────────────────────────────────
// Closed shifts only, newest first. Totals come from the persisted close.

func (s *cajaService) Historial(ctx context.Context, op Operador, page, limit int) (*dto.HistorialCajaResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	sesiones, total, err := s.repos.Cajas.ListSesiones(ctx, op.TenantID, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		data = append(data, *sesionToResponse(&sesiones[i], nil))
	}
	return &dto.HistorialCajaResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *cajaService) ExportarHistorial(ctx context.Context, op Operador) ([]dto.SesionCajaResponse, error) {
	h, err := s.Historial(ctx, op, 1, 200)
	if err != nil {
		return nil, err
	}
	rows := h.Data
	for page := 2; int64(len(rows)) < h.Total && len(rows) < maxExportSesiones; page++ {
		next, err := s.Historial(ctx, op, page, 200)
		if err != nil {
			return nil, err
		}
		if len(next.Data) == 0 {
			break
		}
		rows = append(rows, next.Data...)
	}
	return rows, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) resumen(ctx context.Context, tx *gorm.DB, sesion *model.SesionCaja) (Resumen, error) {
	ventas, err := s.repos.Ventas.ListBySesion(ctx, tx, sesion.ID)
	if err != nil {
		return Resumen{}, err
	}
	devoluciones, err := s.repos.Ventas.ListDevolucionesBySesion(ctx, tx, sesion.ID)
	if err != nil {
		return Resumen{}, err
	}
	movimientos, err := s.repos.Cajas.ListMovimientos(ctx, tx, sesion.ID)
	if err != nil {
		return Resumen{}, err
	}
	return CalcularResumen(sesion.MontoInicial, ventas, devoluciones, movimientos), nil
}

// resumenGuardado rebuilds the summary of a closed shift from its persisted totals.
func resumenGuardado(s *model.SesionCaja) *dto.ResumenCajaResponse {
	r := &dto.ResumenCajaResponse{
		CantidadVentas: s.CantidadVentas,
		TotalVentas:    s.TotalVentas,
		PorMetodo: dto.MontosPorMetodo{
			Efectivo:        s.TotalEfectivo,
			Debito:          s.TotalDebito,
			Credito:         s.TotalCredito,
			Transferencia:   s.TotalTransferencia,
			QR:              s.TotalQR,
			CuentaCorriente: s.TotalCuentaCorriente,
		},
		CantidadDevoluciones: s.CantidadDevoluciones,
		TotalDevoluciones:    s.TotalDevoluciones,
	}
	if s.MontoEsperado != nil {
		r.EfectivoEsperado = *s.MontoEsperado
	}
	return r
}

func sesionToResponse(s *model.SesionCaja, res *Resumen) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:                   s.ID.String(),
		UsuarioID:            s.UsuarioID.String(),
		Estado:               s.Estado,
		MontoInicial:         s.MontoInicial,
		NotasApertura:        s.NotasApertura,
		OpenedAt:             s.OpenedAt.Format(time.RFC3339),
		MontoCierre:          s.MontoCierre,
		MontoEsperado:        s.MontoEsperado,
		Diferencia:           s.Diferencia,
		TotalFacturado:       s.TotalFacturado,
		TotalNoFacturado:     s.TotalNoFacturado,
		Notas:                s.Notas,
		RequiereAutorizacion: s.RequiereAutorizacion,
	}
	if s.Usuario != nil {
		resp.Usuario = s.Usuario.Nombre
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	switch {
	case res != nil:
		resp.Resumen = res.toDTO()
	case s.Estado == model.CajaCerrada:
		resp.Resumen = resumenGuardado(s)
	}
	return resp
}
