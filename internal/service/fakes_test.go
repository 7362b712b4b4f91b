package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendimax/internal/dto"
	"vendimax/internal/model"
	"vendimax/internal/repository"
	"vendimax/internal/worker"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ──────────────────────────────────────────────────────────
// memStore backs every repository the services use. RunInTx serializes
// transactions and rolls the whole store back when fn fails, which is enough
// to stand in for row locks and atomic commits.

type memState struct {
	productos     map[uuid.UUID]model.Producto
	variantes     map[uuid.UUID]model.Variante
	clientes      map[uuid.UUID]model.Cliente
	ventas        map[uuid.UUID]model.Venta
	sesiones      map[uuid.UUID]model.SesionCaja
	devoluciones  []model.Devolucion
	movCaja       []model.MovimientoCaja
	movStock      []model.MovimientoStock
	auditoria     []model.AuditLog
	suscripciones map[uuid.UUID]model.Suscripcion
}

func (s memState) clone() memState {
	c := memState{
		productos:     make(map[uuid.UUID]model.Producto, len(s.productos)),
		variantes:     make(map[uuid.UUID]model.Variante, len(s.variantes)),
		clientes:      make(map[uuid.UUID]model.Cliente, len(s.clientes)),
		ventas:        make(map[uuid.UUID]model.Venta, len(s.ventas)),
		sesiones:      make(map[uuid.UUID]model.SesionCaja, len(s.sesiones)),
		devoluciones:  append([]model.Devolucion(nil), s.devoluciones...),
		movCaja:       append([]model.MovimientoCaja(nil), s.movCaja...),
		movStock:      append([]model.MovimientoStock(nil), s.movStock...),
		auditoria:     append([]model.AuditLog(nil), s.auditoria...),
		suscripciones: make(map[uuid.UUID]model.Suscripcion, len(s.suscripciones)),
	}
	for k, v := range s.productos {
		c.productos[k] = v
	}
	for k, v := range s.variantes {
		c.variantes[k] = v
	}
	for k, v := range s.clientes {
		c.clientes[k] = v
	}
	for k, v := range s.ventas {
		c.ventas[k] = v
	}
	for k, v := range s.sesiones {
		c.sesiones[k] = v
	}
	for k, v := range s.suscripciones {
		c.suscripciones[k] = v
	}
	return c
}

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	// conflictos makes the next N transactions fail with a serialization error.
	conflictos int
	txCount    int
}

func newMemStore() *memStore {
	return &memStore{st: memState{}.clone()}
}

func (m *memStore) repos() Repos {
	return Repos{
		Tx:        m,
		Ventas:    fakeVentas{m},
		Productos: fakeProductos{m},
		Clientes:  fakeClientes{m},
		Cajas:     fakeCajas{m},
		MovStock:  fakeMovStock{m},
		Auditoria: fakeAuditoria{m},
	}
}

func (m *memStore) RunInTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.txCount++
	if m.conflictos > 0 {
		m.conflictos--
		m.mu.Unlock()
		return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	}
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) lock() func() {
	m.mu.Lock()
	return m.mu.Unlock
}

// ── Seeding / inspection helpers ─────────────────────────────────────────────

func (m *memStore) addProducto(tenantID uuid.UUID, nombre string, precio string, stock, minimo int) model.Producto {
	defer m.lock()()
	p := model.Producto{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Nombre:      nombre,
		PrecioVenta: decimal.RequireFromString(precio),
		StockActual: stock,
		StockMinimo: minimo,
		Activo:      true,
	}
	m.st.productos[p.ID] = p
	return p
}

func (m *memStore) addVariante(productoID uuid.UUID, nombre string, stock, minimo int) model.Variante {
	defer m.lock()()
	p := m.st.productos[productoID]
	p.TieneVariantes = true
	m.st.productos[productoID] = p
	v := model.Variante{ID: uuid.New(), ProductoID: productoID, Nombre: nombre, StockActual: stock, StockMinimo: minimo, Activo: true}
	m.st.variantes[v.ID] = v
	return v
}

func (m *memStore) addCliente(tenantID uuid.UUID, estado, limite, deuda string) model.Cliente {
	defer m.lock()()
	c := model.Cliente{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Nombre:        "Cliente " + estado,
		Estado:        estado,
		LimiteCredito: decimal.RequireFromString(limite),
		DeudaActual:   decimal.RequireFromString(deuda),
	}
	m.st.clientes[c.ID] = c
	return c
}

func (m *memStore) setProducto(p model.Producto) {
	defer m.lock()()
	m.st.productos[p.ID] = p
}

func (m *memStore) producto(id uuid.UUID) model.Producto {
	defer m.lock()()
	return m.st.productos[id]
}

func (m *memStore) variante(id uuid.UUID) model.Variante {
	defer m.lock()()
	return m.st.variantes[id]
}

func (m *memStore) cliente(id uuid.UUID) model.Cliente {
	defer m.lock()()
	return m.st.clientes[id]
}

func (m *memStore) venta(id uuid.UUID) model.Venta {
	defer m.lock()()
	return m.st.ventas[id]
}

func (m *memStore) sesion(id uuid.UUID) model.SesionCaja {
	defer m.lock()()
	return m.st.sesiones[id]
}

func (m *memStore) cantidadVentas() int {
	defer m.lock()()
	return len(m.st.ventas)
}

func (m *memStore) movimientosCaja(tipo string) []model.MovimientoCaja {
	defer m.lock()()
	var out []model.MovimientoCaja
	for _, mv := range m.st.movCaja {
		if mv.Tipo == tipo {
			out = append(out, mv)
		}
	}
	return out
}

func (m *memStore) movimientosStock() []model.MovimientoStock {
	defer m.lock()()
	return append([]model.MovimientoStock(nil), m.st.movStock...)
}

func (m *memStore) devoluciones() []model.Devolucion {
	defer m.lock()()
	return append([]model.Devolucion(nil), m.st.devoluciones...)
}

func (m *memStore) auditoria() []model.AuditLog {
	defer m.lock()()
	return append([]model.AuditLog(nil), m.st.auditoria...)
}

// ── Productos ────────────────────────────────────────────────────────────────

type fakeProductos struct{ m *memStore }

func (f fakeProductos) Create(_ context.Context, p *model.Producto) error {
	defer f.m.lock()()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.m.st.productos[p.ID] = *p
	return nil
}

func (f fakeProductos) CreateVariante(_ context.Context, v *model.Variante) error {
	defer f.m.lock()()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	f.m.st.variantes[v.ID] = *v
	return nil
}

func (f fakeProductos) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Producto, error) {
	defer f.m.lock()()
	p, ok := f.m.st.productos[id]
	if !ok || p.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f fakeProductos) FindVarianteByID(_ context.Context, id uuid.UUID) (*model.Variante, error) {
	defer f.m.lock()()
	v, ok := f.m.st.variantes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (f fakeProductos) LockProductosTx(_ context.Context, _ *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Producto, error) {
	defer f.m.lock()()
	var out []model.Producto
	for _, id := range ids {
		if p, ok := f.m.st.productos[id]; ok && p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeProductos) LockVariantesTx(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]model.Variante, error) {
	defer f.m.lock()()
	var out []model.Variante
	for _, id := range ids {
		if v, ok := f.m.st.variantes[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f fakeProductos) DescontarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int) error {
	defer f.m.lock()()
	p, ok := f.m.st.productos[id]
	if !ok || p.StockActual < cantidad {
		return repository.ErrStockConcurrente
	}
	p.StockActual -= cantidad
	f.m.st.productos[id] = p
	return nil
}

func (f fakeProductos) DescontarStockVarianteTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int) error {
	defer f.m.lock()()
	v, ok := f.m.st.variantes[id]
	if !ok || v.StockActual < cantidad {
		return repository.ErrStockConcurrente
	}
	v.StockActual -= cantidad
	f.m.st.variantes[id] = v
	return nil
}

func (f fakeProductos) RestaurarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int) error {
	defer f.m.lock()()
	p := f.m.st.productos[id]
	p.StockActual += cantidad
	f.m.st.productos[id] = p
	return nil
}

func (f fakeProductos) RestaurarStockVarianteTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int) error {
	defer f.m.lock()()
	v := f.m.st.variantes[id]
	v.StockActual += cantidad
	f.m.st.variantes[id] = v
	return nil
}

// ── Clientes ─────────────────────────────────────────────────────────────────

type fakeClientes struct{ m *memStore }

func (f fakeClientes) Create(_ context.Context, c *model.Cliente) error {
	defer f.m.lock()()
	f.m.st.clientes[c.ID] = *c
	return nil
}

func (f fakeClientes) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Cliente, error) {
	defer f.m.lock()()
	c, ok := f.m.st.clientes[id]
	if !ok || c.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f fakeClientes) LockClienteTx(ctx context.Context, _ *gorm.DB, tenantID, id uuid.UUID) (*model.Cliente, error) {
	return f.FindByID(ctx, tenantID, id)
}

func (f fakeClientes) UpdateCuentaTx(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	defer f.m.lock()()
	cur := f.m.st.clientes[c.ID]
	cur.DeudaActual = c.DeudaActual
	cur.Estado = c.Estado
	cur.UltimaCompra = c.UltimaCompra
	f.m.st.clientes[c.ID] = cur
	return nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type fakeVentas struct{ m *memStore }

func (f fakeVentas) LockTicketsTx(context.Context, *gorm.DB, uuid.UUID) error { return nil }

func (f fakeVentas) NextTicketNumber(_ context.Context, _ *gorm.DB, usuarioID uuid.UUID) (int, error) {
	defer f.m.lock()()
	max := 0
	for _, v := range f.m.st.ventas {
		if v.UsuarioID == usuarioID && v.NumeroTicket > max {
			max = v.NumeroTicket
		}
	}
	return max + 1, nil
}

func (f fakeVentas) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	defer f.m.lock()()
	for _, other := range f.m.st.ventas {
		if other.UsuarioID == v.UsuarioID && other.NumeroTicket == v.NumeroTicket {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	f.m.st.ventas[v.ID] = *v
	return nil
}

func (f fakeVentas) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Venta, error) {
	defer f.m.lock()()
	v, ok := f.m.st.ventas[id]
	if !ok || v.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (f fakeVentas) LockVentaTx(ctx context.Context, _ *gorm.DB, tenantID, id uuid.UUID) (*model.Venta, error) {
	return f.FindByID(ctx, tenantID, id)
}

func (f fakeVentas) UpdateEstadoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, estado string, motivo *string) error {
	defer f.m.lock()()
	v := f.m.st.ventas[id]
	v.Estado = estado
	v.MotivoAnulacion = motivo
	f.m.st.ventas[id] = v
	return nil
}

func (f fakeVentas) CreateDevolucion(_ context.Context, _ *gorm.DB, d *model.Devolucion) error {
	defer f.m.lock()()
	f.m.st.devoluciones = append(f.m.st.devoluciones, *d)
	return nil
}

func (f fakeVentas) ListBySesion(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) ([]model.Venta, error) {
	defer f.m.lock()()
	var out []model.Venta
	for _, v := range f.m.st.ventas {
		if v.SesionCajaID != nil && *v.SesionCajaID == sesionID &&
			(v.Estado == model.VentaCompletada || v.Estado == model.VentaAnulada) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroTicket < out[j].NumeroTicket })
	return out, nil
}

func (f fakeVentas) ListDevolucionesBySesion(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) ([]model.Devolucion, error) {
	defer f.m.lock()()
	var out []model.Devolucion
	for _, d := range f.m.st.devoluciones {
		if d.SesionCajaID != nil && *d.SesionCajaID == sesionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f fakeVentas) List(_ context.Context, tenantID uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	defer f.m.lock()()
	var out []model.Venta
	for _, v := range f.m.st.ventas {
		if v.TenantID != tenantID {
			continue
		}
		if filter.Estado != "all" && v.Estado != filter.Estado {
			continue
		}
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (f fakeVentas) CountDesde(_ context.Context, tenantID uuid.UUID, desde time.Time) (int64, error) {
	defer f.m.lock()()
	var n int64
	for _, v := range f.m.st.ventas {
		if v.TenantID == tenantID && !v.CreatedAt.Before(desde) && v.Estado != model.VentaAnulada {
			n++
		}
	}
	return n, nil
}

// ── Cajas ────────────────────────────────────────────────────────────────────

type fakeCajas struct{ m *memStore }

func (f fakeCajas) LockOperadorTx(context.Context, *gorm.DB, uuid.UUID) error { return nil }

func (f fakeCajas) CreateSesion(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	defer f.m.lock()()
	for _, other := range f.m.st.sesiones {
		if other.UsuarioID == s.UsuarioID && other.Estado == model.CajaAbierta {
			return &pgconn.PgError{Code: "23505", Message: "uq_sesion_caja_abierta_por_usuario"}
		}
	}
	f.m.st.sesiones[s.ID] = *s
	return nil
}

func (f fakeCajas) FindSesionAbierta(_ context.Context, _ *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	defer f.m.lock()()
	for _, s := range f.m.st.sesiones {
		if s.UsuarioID == usuarioID && s.Estado == model.CajaAbierta {
			return &s, nil
		}
	}
	return nil, nil
}

func (f fakeCajas) FindSesionAbiertaForShare(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return f.FindSesionAbierta(ctx, tx, usuarioID)
}

func (f fakeCajas) LockSesionTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	return f.FindSesionByID(ctx, id)
}

func (f fakeCajas) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	defer f.m.lock()()
	s, ok := f.m.st.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f fakeCajas) UpdateSesion(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	defer f.m.lock()()
	f.m.st.sesiones[s.ID] = *s
	return nil
}

func (f fakeCajas) ListSesiones(_ context.Context, tenantID uuid.UUID, page, limit int) ([]model.SesionCaja, int64, error) {
	defer f.m.lock()()
	var all []model.SesionCaja
	for _, s := range f.m.st.sesiones {
		if s.TenantID == tenantID && s.Estado == model.CajaCerrada {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ClosedAt.After(*all[j].ClosedAt) })
	from := (page - 1) * limit
	if from >= len(all) {
		return nil, int64(len(all)), nil
	}
	to := from + limit
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], int64(len(all)), nil
}

func (f fakeCajas) CreateMovimiento(_ context.Context, _ *gorm.DB, mv *model.MovimientoCaja) error {
	defer f.m.lock()()
	f.m.st.movCaja = append(f.m.st.movCaja, *mv)
	return nil
}

func (f fakeCajas) ListMovimientos(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	defer f.m.lock()()
	var out []model.MovimientoCaja
	for _, mv := range f.m.st.movCaja {
		if mv.SesionCajaID != nil && *mv.SesionCajaID == sesionID {
			out = append(out, mv)
		}
	}
	return out, nil
}

// ── Movimientos de stock / auditoria / suscripciones ─────────────────────────

type fakeMovStock struct{ m *memStore }

func (f fakeMovStock) CreateTx(_ context.Context, _ *gorm.DB, mv *model.MovimientoStock) error {
	defer f.m.lock()()
	f.m.st.movStock = append(f.m.st.movStock, *mv)
	return nil
}

func (f fakeMovStock) ListByReferencia(_ context.Context, referenciaID uuid.UUID) ([]model.MovimientoStock, error) {
	defer f.m.lock()()
	var out []model.MovimientoStock
	for _, mv := range f.m.st.movStock {
		if mv.ReferenciaID != nil && *mv.ReferenciaID == referenciaID {
			out = append(out, mv)
		}
	}
	return out, nil
}

type fakeAuditoria struct{ m *memStore }

func (f fakeAuditoria) CreateTx(_ context.Context, _ *gorm.DB, a *model.AuditLog) error {
	defer f.m.lock()()
	f.m.st.auditoria = append(f.m.st.auditoria, *a)
	return nil
}

func (f fakeAuditoria) ListByEntidad(_ context.Context, entidadID uuid.UUID) ([]model.AuditLog, error) {
	defer f.m.lock()()
	var out []model.AuditLog
	for _, a := range f.m.st.auditoria {
		if a.EntidadID == entidadID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSuscripciones struct {
	m     *memStore
	calls int
}

func (f *fakeSuscripciones) FindActiva(_ context.Context, tenantID uuid.UUID) (*model.Suscripcion, error) {
	defer f.m.lock()()
	f.calls++
	s, ok := f.m.st.suscripciones[tenantID]
	if !ok || !s.Activa {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

// ── Async job recorder ───────────────────────────────────────────────────────

type jobRecorder struct {
	mu       sync.Mutex
	alertas  []worker.AlertaStockPayload
	reportes []worker.ReporteCierrePayload
	err      error
}

func (r *jobRecorder) EnqueueAlertaStock(_ context.Context, p worker.AlertaStockPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alertas = append(r.alertas, p)
	return r.err
}

func (r *jobRecorder) EnqueueReporteCierre(_ context.Context, p worker.ReporteCierrePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reportes = append(r.reportes, p)
	return r.err
}
