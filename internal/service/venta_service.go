package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vendimax/internal/apierror"
	"vendimax/internal/dto"
	"vendimax/internal/model"
	"vendimax/internal/numeric"
	"vendimax/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, op Operador, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, op Operador, id uuid.UUID, motivo string) error
	ListVentas(ctx context.Context, op Operador, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repos         Repos
	alertas       AlertasStock
	maxReintentos int
	now           func() time.Time
}

// NewVentaService builds the sale processor. alertas may be nil.
func NewVentaService(repos Repos, alertas AlertasStock, maxReintentos int) VentaService {
	return &ventaService{
		repos:         repos,
		alertas:       alertas,
		maxReintentos: maxReintentos,
		now:           time.Now,
	}
}

// lineaVenta is a cart line with its ids already parsed.
type lineaVenta struct {
	productoID uuid.UUID
	varianteID *uuid.UUID
	cantidad   int
}

// stockKey identifies the row whose quantity a line consumes: the variant
// when there is one, the product otherwise.
func (l lineaVenta) stockKey() uuid.UUID {
	if l.varianteID != nil {
		return *l.varianteID
	}
	return l.productoID
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// 1. Validate the request shape and recompute every amount (no DB access)
// 2. BEGIN TX: lock stock rows, client and ticket counter; check availability
// 3. Write venta+items+pagos, decrement stock, cash movement, client account
// 4. COMMIT (retried on serialization conflicts)
// 5. (async) low-stock alert

func (s *ventaService) RegistrarVenta(ctx context.Context, op Operador, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, apierror.Validacion("entrada_invalida", "datos de venta invalidos").With("campos", dto.FieldErrors(err))
	}

	lineas := make([]lineaVenta, len(req.Items))
	for i, it := range req.Items {
		l := lineaVenta{productoID: uuid.MustParse(it.ProductoID), cantidad: it.Cantidad}
		if it.VarianteID != nil && *it.VarianteID != "" {
			vid := uuid.MustParse(*it.VarianteID)
			l.varianteID = &vid
		}
		lineas[i] = l
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil && *req.ClienteID != "" {
		cid := uuid.MustParse(*req.ClienteID)
		clienteID = &cid
	}
	if req.MetodoPago == model.MetodoCuentaCorriente && clienteID == nil {
		return nil, apierror.Validacion("cliente_requerido", "una venta en cuenta corriente requiere cliente")
	}

	tot, err := CalcularTotales(req.Items, req.Descuento, req.TipoDescuento)
	if err != nil {
		return nil, err
	}
	if err := validarPagos(req, tot.Total); err != nil {
		return nil, err
	}

	var (
		venta     *model.Venta
		nombres   map[uuid.UUID]string
		bajoStock []worker.ProductoBajoStock
	)
	err = conReintentos(ctx, s.maxReintentos, "registrar_venta", func() error {
		return s.repos.Tx.RunInTx(ctx, func(tx *gorm.DB) error {
			r, err := s.registrarTx(ctx, tx, op, req, lineas, clienteID, tot)
			if err != nil {
				return err
			}
			venta, nombres, bajoStock = r.venta, r.nombres, r.bajoStock
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("tenant_id", op.TenantID.String()).
		Int("ticket", venta.NumeroTicket).
		Str("total", venta.Total.String()).
		Str("metodo", venta.MetodoPago).
		Msg("venta registrada")

	if len(bajoStock) > 0 && s.alertas != nil {
		payload := worker.AlertaStockPayload{
			TenantID:     op.TenantID.String(),
			VentaID:      venta.ID.String(),
			NumeroTicket: venta.NumeroTicket,
			Productos:    bajoStock,
		}
		if err := s.alertas.EnqueueAlertaStock(ctx, payload); err != nil {
			log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo encolar alerta de stock")
		}
	}

	return ventaToResponse(venta, nombres), nil
}

// validarPagos checks the payment shape against the recomputed total.
func validarPagos(req dto.RegistrarVentaRequest, total decimal.Decimal) error {
	if req.MetodoPago != model.MetodoMixto {
		if len(req.Pagos) > 0 {
			return apierror.Validacion("pagos_sin_mixto", "solo una venta MIXTO acepta pagos desglosados")
		}
		return nil
	}
	if len(req.Pagos) < 2 {
		return apierror.Validacion("pagos_requeridos", "una venta MIXTO requiere al menos dos pagos")
	}
	suma := decimal.Zero
	for _, p := range req.Pagos {
		suma = suma.Add(p.Monto)
	}
	if !numeric.Equal(suma, total) {
		return apierror.Validacion("pagos_no_cuadran", "los pagos suman %s y el total es %s", suma.StringFixed(2), total.StringFixed(2)).
			With("total", total).
			With("suma_pagos", suma)
	}
	return nil
}

type ventaRegistrada struct {
	venta     *model.Venta
	nombres   map[uuid.UUID]string
	bajoStock []worker.ProductoBajoStock
}

func (s *ventaService) registrarTx(
	ctx context.Context,
	tx *gorm.DB,
	op Operador,
	req dto.RegistrarVentaRequest,
	lineas []lineaVenta,
	clienteID *uuid.UUID,
	tot *Totales,
) (*ventaRegistrada, error) {
	// Lock every stock row first, in id order, so that concurrent carts
	// touching the same products queue instead of deadlocking.
	productos, err := s.repos.Productos.LockProductosTx(ctx, tx, op.TenantID, idsOrdenados(lineas, false))
	if err != nil {
		return nil, err
	}
	prodByID := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		prodByID[productos[i].ID] = &productos[i]
	}
	var varByID map[uuid.UUID]*model.Variante
	if varIDs := idsOrdenados(lineas, true); len(varIDs) > 0 {
		variantes, err := s.repos.Productos.LockVariantesTx(ctx, tx, varIDs)
		if err != nil {
			return nil, err
		}
		varByID = make(map[uuid.UUID]*model.Variante, len(variantes))
		for i := range variantes {
			varByID[variantes[i].ID] = &variantes[i]
		}
	}

	nombres := make(map[uuid.UUID]string, len(lineas))
	stock := make(map[uuid.UUID]int)
	minimo := make(map[uuid.UUID]int)
	demanda := make(map[uuid.UUID]int)
	for i, l := range lineas {
		p, ok := prodByID[l.productoID]
		if !ok {
			return nil, apierror.Referencia("producto_no_encontrado", "producto %s no encontrado", l.productoID).
				With("producto_id", l.productoID.String())
		}
		if !p.Activo {
			return nil, apierror.ReglaNegocio("producto_inactivo", "el producto %s esta inactivo y no puede venderse", p.Nombre).
				With("producto", p.Nombre)
		}
		nombres[l.productoID] = p.Nombre
		if l.varianteID == nil {
			if p.TieneVariantes {
				return nil, apierror.Validacion("variante_requerida", "la linea %d debe indicar variante de %s", i+1, p.Nombre).
					With("producto", p.Nombre)
			}
			stock[p.ID], minimo[p.ID] = p.StockActual, p.StockMinimo
		} else {
			v, ok := varByID[*l.varianteID]
			if !ok || v.ProductoID != p.ID {
				return nil, apierror.Referencia("variante_no_encontrada", "variante %s no encontrada para %s", *l.varianteID, p.Nombre).
					With("variante_id", l.varianteID.String())
			}
			if !v.Activo {
				return nil, apierror.ReglaNegocio("producto_inactivo", "la variante %s de %s esta inactiva", v.Nombre, p.Nombre).
					With("producto", p.Nombre+" "+v.Nombre)
			}
			nombres[v.ID] = p.Nombre + " " + v.Nombre
			stock[v.ID], minimo[v.ID] = v.StockActual, v.StockMinimo
		}
		demanda[l.stockKey()] += l.cantidad
	}

	// Quantities are aggregated so two lines of the same product cannot each
	// pass the check on their own.
	chequeado := make(map[uuid.UUID]bool, len(demanda))
	for _, l := range lineas {
		key := l.stockKey()
		if chequeado[key] {
			continue
		}
		chequeado[key] = true
		if stock[key] < demanda[key] {
			return nil, apierror.ReglaNegocio("stock_insuficiente", "stock insuficiente para %s: disponible %d, solicitado %d",
				nombres[key], stock[key], demanda[key]).
				With("producto", nombres[key]).
				With("disponible", stock[key]).
				With("solicitado", demanda[key])
		}
	}

	var cliente *model.Cliente
	if clienteID != nil {
		cliente, err = s.repos.Clientes.LockClienteTx(ctx, tx, op.TenantID, *clienteID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Referencia("cliente_no_encontrado", "cliente %s no encontrado", *clienteID).
				With("cliente_id", clienteID.String())
		}
		if err != nil {
			return nil, err
		}
		if req.MetodoPago == model.MetodoCuentaCorriente &&
			(cliente.Estado == model.ClienteBloqueado || cliente.Estado == model.ClienteInactivo) {
			return nil, apierror.ReglaNegocio("cliente_no_habilitado", "el cliente %s no puede comprar en cuenta corriente (%s)", cliente.Nombre, cliente.Estado).
				With("estado", cliente.Estado)
		}
	}

	if err := s.repos.Ventas.LockTicketsTx(ctx, tx, op.UsuarioID); err != nil {
		return nil, err
	}
	ticket, err := s.repos.Ventas.NextTicketNumber(ctx, tx, op.UsuarioID)
	if err != nil {
		return nil, err
	}

	// A sale with no open shift is still valid; it just belongs to none.
	sesion, err := s.repos.Cajas.FindSesionAbiertaForShare(ctx, tx, op.UsuarioID)
	if err != nil {
		return nil, err
	}
	var sesionID *uuid.UUID
	if sesion != nil {
		sesionID = &sesion.ID
	}

	now := s.now()
	venta := &model.Venta{
		ID:             uuid.New(),
		TenantID:       op.TenantID,
		NumeroTicket:   ticket,
		UsuarioID:      op.UsuarioID,
		SesionCajaID:   sesionID,
		ClienteID:      clienteID,
		Subtotal:       tot.Subtotal,
		DescuentoMonto: tot.DescuentoMonto,
		TipoDescuento:  tot.TipoDescuento,
		Total:          tot.Total,
		MetodoPago:     req.MetodoPago,
		Estado:         model.VentaCompletada,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, l := range lineas {
		venta.Items = append(venta.Items, model.VentaItem{
			ID:             uuid.New(),
			VentaID:        venta.ID,
			ProductoID:     l.productoID,
			VarianteID:     l.varianteID,
			Cantidad:       l.cantidad,
			PrecioUnitario: tot.Lineas[i].PrecioUnitario,
			Subtotal:       tot.Lineas[i].Subtotal,
		})
	}
	for _, p := range req.Pagos {
		venta.Pagos = append(venta.Pagos, model.VentaPago{
			ID:         uuid.New(),
			VentaID:    venta.ID,
			Metodo:     p.Metodo,
			Monto:      p.Monto.Round(2),
			Referencia: p.Referencia,
		})
	}
	if err := s.repos.Ventas.Create(ctx, tx, venta); err != nil {
		return nil, err
	}

	// Descontar stock; the guarded update fails with ErrStockConcurrente if
	// another transaction got there first, which triggers a retry.
	for _, l := range lineas {
		key := l.stockKey()
		if l.varianteID != nil {
			err = s.repos.Productos.DescontarStockVarianteTx(ctx, tx, *l.varianteID, l.cantidad)
		} else {
			err = s.repos.Productos.DescontarStockTx(ctx, tx, l.productoID, l.cantidad)
		}
		if err != nil {
			return nil, fmt.Errorf("descontando stock de %s: %w", nombres[key], err)
		}
		antes := stock[key]
		stock[key] = antes - l.cantidad
		mov := &model.MovimientoStock{
			ID:            uuid.New(),
			TenantID:      op.TenantID,
			ProductoID:    l.productoID,
			VarianteID:    l.varianteID,
			Tipo:          "venta",
			Cantidad:      -l.cantidad,
			StockAnterior: antes,
			StockNuevo:    stock[key],
			Motivo:        fmt.Sprintf("Venta #%d", ticket),
			ReferenciaID:  &venta.ID,
			CreatedAt:     now,
		}
		if err := s.repos.MovStock.CreateTx(ctx, tx, mov); err != nil {
			return nil, err
		}
	}

	if req.MetodoPago != model.MetodoCuentaCorriente {
		metodo := req.MetodoPago
		mov := &model.MovimientoCaja{
			ID:           uuid.New(),
			TenantID:     op.TenantID,
			UsuarioID:    op.UsuarioID,
			SesionCajaID: sesionID,
			Tipo:         model.MovVenta,
			MetodoPago:   &metodo,
			Monto:        venta.Total,
			Descripcion:  fmt.Sprintf("Venta #%d", ticket),
			ReferenciaID: &venta.ID,
			CreatedAt:    now,
		}
		if err := s.repos.Cajas.CreateMovimiento(ctx, tx, mov); err != nil {
			return nil, err
		}
	}

	if cliente != nil {
		if err := s.actualizarCuentaTx(ctx, tx, op, cliente, venta, now); err != nil {
			return nil, err
		}
	}

	var bajoStock []worker.ProductoBajoStock
	for key := range chequeado {
		if stock[key] > minimo[key] {
			continue
		}
		bajoStock = append(bajoStock, worker.ProductoBajoStock{
			ID:          key.String(),
			Nombre:      nombres[key],
			StockActual: stock[key],
			StockMinimo: minimo[key],
		})
	}
	sort.Slice(bajoStock, func(i, j int) bool { return bajoStock[i].Nombre < bajoStock[j].Nombre })

	return &ventaRegistrada{venta: venta, nombres: nombres, bajoStock: bajoStock}, nil
}

// actualizarCuentaTx stamps the purchase on the client and, for on-account
// sales, raises its debt and re-evaluates its status.
func (s *ventaService) actualizarCuentaTx(ctx context.Context, tx *gorm.DB, op Operador, c *model.Cliente, v *model.Venta, now time.Time) error {
	c.UltimaCompra = &now
	if v.MetodoPago == model.MetodoCuentaCorriente {
		deudaAnterior := c.DeudaActual
		estadoAnterior := c.Estado
		c.DeudaActual = deudaAnterior.Add(v.Total)
		c.Estado = EvaluarEstadoCredito(c.DeudaActual, c.LimiteCredito, c.Estado)

		if c.Estado != estadoAnterior {
			audit := &model.AuditLog{
				ID:        uuid.New(),
				TenantID:  op.TenantID,
				UsuarioID: op.UsuarioID,
				Accion:    "cliente.estado_credito",
				Entidad:   "cliente",
				EntidadID: c.ID,
				Detalle: datatypes.JSONMap{
					"estado_anterior": estadoAnterior,
					"estado_nuevo":    c.Estado,
					"deuda_anterior":  deudaAnterior.String(),
					"deuda_nueva":     c.DeudaActual.String(),
					"limite_credito":  c.LimiteCredito.String(),
					"venta_id":        v.ID.String(),
				},
				CreatedAt: now,
			}
			if err := s.repos.Auditoria.CreateTx(ctx, tx, audit); err != nil {
				return err
			}
			log.Warn().
				Str("cliente_id", c.ID.String()).
				Str("deuda", c.DeudaActual.String()).
				Str("limite", c.LimiteCredito.String()).
				Msg("cliente pasa a MOROSO")
		}
	}
	return s.repos.Clientes.UpdateCuentaTx(ctx, tx, c)
}

// idsOrdenados returns the distinct product (or variant) ids of the cart,
// sorted so every transaction acquires row locks in the same order.
func idsOrdenados(lineas []lineaVenta, variantes bool) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(lineas))
	ids := make([]uuid.UUID, 0, len(lineas))
	for _, l := range lineas {
		id := l.productoID
		if variantes {
			if l.varianteID == nil {
				continue
			}
			id = *l.varianteID
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Cancelling never rewrites history: stock comes back through new stock
// movements and the money goes out as Devoluciones of the canceller's open shift.

func (s *ventaService) AnularVenta(ctx context.Context, op Operador, id uuid.UUID, motivo string) error {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return apierror.Validacion("motivo_requerido", "la anulacion requiere motivo")
	}

	var numeroTicket int
	err := conReintentos(ctx, s.maxReintentos, "anular_venta", func() error {
		return s.repos.Tx.RunInTx(ctx, func(tx *gorm.DB) error {
			v, err := s.anularTx(ctx, tx, op, id, motivo)
			if err != nil {
				return err
			}
			numeroTicket = v.NumeroTicket
			return nil
		})
	})
	if err != nil {
		return err
	}
	log.Info().Str("venta_id", id.String()).Int("ticket", numeroTicket).Str("motivo", motivo).Msg("venta anulada")
	return nil
}

func (s *ventaService) anularTx(ctx context.Context, tx *gorm.DB, op Operador, id uuid.UUID, motivo string) (*model.Venta, error) {
	venta, err := s.repos.Ventas.LockVentaTx(ctx, tx, op.TenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Referencia("venta_no_encontrada", "venta %s no encontrada", id)
	}
	if err != nil {
		return nil, err
	}
	if venta.Estado == model.VentaAnulada {
		return nil, apierror.ReglaNegocio("venta_ya_anulada", "la venta #%d ya esta anulada", venta.NumeroTicket)
	}
	if venta.MetodoPago == model.MetodoCuentaCorriente {
		return nil, apierror.ReglaNegocio("venta_cuenta_corriente", "la venta #%d es en cuenta corriente y se ajusta desde la cuenta del cliente", venta.NumeroTicket)
	}

	lineas := make([]lineaVenta, 0, len(venta.Items))
	for _, it := range venta.Items {
		lineas = append(lineas, lineaVenta{productoID: it.ProductoID, varianteID: it.VarianteID, cantidad: it.Cantidad})
	}
	stock := make(map[uuid.UUID]int)
	productos, err := s.repos.Productos.LockProductosTx(ctx, tx, op.TenantID, idsOrdenados(lineas, false))
	if err != nil {
		return nil, err
	}
	for _, p := range productos {
		stock[p.ID] = p.StockActual
	}
	if varIDs := idsOrdenados(lineas, true); len(varIDs) > 0 {
		variantes, err := s.repos.Productos.LockVariantesTx(ctx, tx, varIDs)
		if err != nil {
			return nil, err
		}
		for _, v := range variantes {
			stock[v.ID] = v.StockActual
		}
	}

	now := s.now()
	for _, l := range lineas {
		if l.varianteID != nil {
			err = s.repos.Productos.RestaurarStockVarianteTx(ctx, tx, *l.varianteID, l.cantidad)
		} else {
			err = s.repos.Productos.RestaurarStockTx(ctx, tx, l.productoID, l.cantidad)
		}
		if err != nil {
			return nil, err
		}
		key := l.stockKey()
		antes := stock[key]
		stock[key] = antes + l.cantidad
		mov := &model.MovimientoStock{
			ID:            uuid.New(),
			TenantID:      op.TenantID,
			ProductoID:    l.productoID,
			VarianteID:    l.varianteID,
			Tipo:          "restore_anulacion",
			Cantidad:      l.cantidad,
			StockAnterior: antes,
			StockNuevo:    stock[key],
			Motivo:        fmt.Sprintf("Anulacion venta #%d: %s", venta.NumeroTicket, motivo),
			ReferenciaID:  &venta.ID,
			CreatedAt:     now,
		}
		if err := s.repos.MovStock.CreateTx(ctx, tx, mov); err != nil {
			return nil, err
		}
	}

	sesion, err := s.repos.Cajas.FindSesionAbiertaForShare(ctx, tx, op.UsuarioID)
	if err != nil {
		return nil, err
	}
	var sesionID *uuid.UUID
	if sesion != nil {
		sesionID = &sesion.ID
	}

	// One refund per payment split, so each lands in its own method bucket.
	splits := []model.VentaPago{{Metodo: venta.MetodoPago, Monto: venta.Total}}
	if venta.MetodoPago == model.MetodoMixto {
		splits = venta.Pagos
	}
	for _, p := range splits {
		if p.Monto.IsZero() {
			continue
		}
		dev := &model.Devolucion{
			ID:           uuid.New(),
			TenantID:     op.TenantID,
			VentaID:      venta.ID,
			SesionCajaID: sesionID,
			UsuarioID:    op.UsuarioID,
			Metodo:       p.Metodo,
			Monto:        p.Monto,
			Motivo:       motivo,
			CreatedAt:    now,
		}
		if err := s.repos.Ventas.CreateDevolucion(ctx, tx, dev); err != nil {
			return nil, err
		}
		metodo := p.Metodo
		mov := &model.MovimientoCaja{
			ID:           uuid.New(),
			TenantID:     op.TenantID,
			UsuarioID:    op.UsuarioID,
			SesionCajaID: sesionID,
			Tipo:         model.MovDevolucion,
			MetodoPago:   &metodo,
			Monto:        p.Monto.Neg(),
			Descripcion:  fmt.Sprintf("Anulacion venta #%d: %s", venta.NumeroTicket, motivo),
			ReferenciaID: &venta.ID,
			CreatedAt:    now,
		}
		if err := s.repos.Cajas.CreateMovimiento(ctx, tx, mov); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Ventas.UpdateEstadoTx(ctx, tx, venta.ID, model.VentaAnulada, &motivo); err != nil {
		return nil, err
	}
	return venta, nil
}

// ListVentas returns a paginated list of the tenant's sales, filtered by
// date and estado. Default filter: today's completed sales.
func (s *ventaService) ListVentas(ctx context.Context, op Operador, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = model.VentaCompletada
	}
	ventas, total, err := s.repos.Ventas.List(ctx, op.TenantID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i], nil))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta, nombres map[uuid.UUID]string) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		if n, ok := nombres[item.ProductoID]; ok {
			nombre = n
		}
		var varianteID *string
		if item.VarianteID != nil {
			vid := item.VarianteID.String()
			varianteID = &vid
			if n, ok := nombres[*item.VarianteID]; ok {
				nombre = n
			}
		}
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			VarianteID:     varianteID,
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	pagos := make([]dto.PagoResponse, 0, len(v.Pagos))
	for _, p := range v.Pagos {
		pagos = append(pagos, dto.PagoResponse{Metodo: p.Metodo, Monto: p.Monto, Referencia: p.Referencia})
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroTicket:   v.NumeroTicket,
		UsuarioID:      v.UsuarioID.String(),
		SesionCajaID:   uuidPtrString(v.SesionCajaID),
		ClienteID:      uuidPtrString(v.ClienteID),
		Items:          items,
		Subtotal:       v.Subtotal,
		DescuentoMonto: v.DescuentoMonto,
		TipoDescuento:  v.TipoDescuento,
		Total:          v.Total,
		MetodoPago:     v.MetodoPago,
		Pagos:          pagos,
		Estado:         v.Estado,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
