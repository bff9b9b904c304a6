package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Error taxonomy shared by every service. Handlers map them to HTTP status
// codes with errors.Is; anything else is an internal error.
var (
	ErrValidacion        = errors.New("datos invalidos")
	ErrNoEncontrado      = errors.New("no encontrado")
	ErrStockInsuficiente = errors.New("no hay suficiente stock")
	ErrNoEliminable      = errors.New("solo se pueden eliminar movimientos de tipo salida")
	ErrCredenciales      = errors.New("credenciales invalidas")
	ErrOcupado           = errors.New("recurso ocupado, intente nuevamente")
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFound turns gorm.ErrRecordNotFound into ErrNoEncontrado and leaves
// every other error untouched.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNoEncontrado, errors.New(what+" no encontrado"))
	}
	return err
}

// Locker serialises settlement recomputation across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Encolador queues a settlement refresh for the worker pool.
type Encolador interface {
	EncolarLiquidacion(ctx context.Context, fecha time.Time) error
}

// Cache is a JSON key/value cache with TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const claveDashboard = "dashboard:resumen"

// Efectos runs the after-commit consequences of a ledger or catalogue write:
// the cached dashboard is dropped and the settlement snapshots from the
// affected day onward are refreshed. All fields are optional.
type Efectos struct {
	Encolador   Encolador
	Liquidacion LiquidacionService
	Cache       Cache
}

// Aplicar never fails the caller: the write is already committed and every
// snapshot is a projection that the next read recomputes anyway.
func (e *Efectos) Aplicar(ctx context.Context, fecha time.Time) {
	if e == nil {
		return
	}
	if e.Cache != nil {
		if err := e.Cache.Delete(ctx, claveDashboard); err != nil {
			log.Warn().Err(err).Msg("efectos: no se pudo invalidar el dashboard")
		}
	}
	if e.Encolador != nil {
		err := e.Encolador.EncolarLiquidacion(ctx, fecha)
		if err == nil {
			return
		}
		log.Warn().Err(err).Time("fecha", fecha).Msg("efectos: cola no disponible, recalculando en linea")
	}
	if e.Liquidacion != nil {
		if err := e.Liquidacion.Recalcular(ctx, fecha); err != nil {
			log.Error().Err(err).Time("fecha", fecha).Msg("efectos: recalculo de liquidacion fallido")
		}
	}
}
