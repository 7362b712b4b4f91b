package infra

import (
	"fmt"

	"vendimax/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date (see RunMigrations).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations runs AutoMigrate for every model and then the idempotent
// patches GORM cannot express. Integration tests call it directly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Suscripcion{},
		&model.Producto{},
		&model.Variante{},
		&model.Cliente{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaPago{},
		&model.Devolucion{},
		&model.MovimientoStock{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs DDL that GORM AutoMigrate cannot handle on its own
// (partial indexes, CHECK constraints). Each statement is guarded so re-running
// on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one ABIERTA shift per operator. Backstop for the advisory lock in Abrir.
		{"uq_sesion_caja_abierta_por_usuario",
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_sesion_caja_abierta_por_usuario
			     ON sesion_cajas (usuario_id) WHERE estado = 'ABIERTA'`},
		{"chk_productos_stock_no_negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		{"chk_variantes_stock_no_negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_variantes_stock_no_negativo') THEN
    ALTER TABLE variantes ADD CONSTRAINT chk_variantes_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		{"chk_clientes_deuda_no_negativa", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_clientes_deuda_no_negativa') THEN
    ALTER TABLE clientes ADD CONSTRAINT chk_clientes_deuda_no_negativa CHECK (deuda_actual >= 0);
  END IF;
END $$`},
		{"idx_ventas_tenant_created_at",
			`CREATE INDEX IF NOT EXISTS idx_ventas_tenant_created_at ON ventas (tenant_id, created_at)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
