// cmd/seeduser/main.go: crea/actualiza un comercio de demo con su administrador
// y una suscripcion con todas las funciones habilitadas.
// Uso: go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"os"

	"vendimax/internal/config"
	"vendimax/internal/infra"
	"vendimax/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	tenantID := uuid.New()
	if v := os.Getenv("SEED_TENANT_ID"); v != "" {
		tenantID = uuid.MustParse(v)
	}
	username := "admin@vendimax.com"
	password := "1234"
	email := "admin@vendimax.com"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	err = db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
		u := model.Usuario{
			TenantID:     tenantID,
			Username:     username,
			Nombre:       "Admin Demo",
			Email:        &email,
			PasswordHash: string(hash),
			Rol:          "administrador",
			Activo:       true,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"tenant_id", "password_hash", "nombre", "email", "rol", "activo"}),
		}).Create(&u).Error; err != nil {
			return err
		}

		s := model.Suscripcion{
			TenantID:     tenantID,
			Plan:         "demo",
			Features:     datatypes.JSONMap{"ventas": true, "caja": true},
			MaxVentasMes: 0,
			Activa:       true,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "features", "max_ventas_mes", "activa"}),
		}).Create(&s).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	fmt.Printf("Usuario '%s' (comercio %s) creado/actualizado con password '%s'\n", username, tenantID, password)
}
