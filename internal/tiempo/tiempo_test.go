package tiempo_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"cajapos/internal/tiempo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRange(t *testing.T) {
	clock, err := tiempo.New("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	desde, hasta := clock.DayRange(time.Date(2024, 3, 15, 2, 30, 0, 0, time.UTC))
	// 02:30 UTC is still the 14th in Buenos Aires.
	assert.Equal(t, "2024-03-14T00:00:00-03:00", desde.Format(time.RFC3339))
	assert.Equal(t, "2024-03-15T00:00:00-03:00", hasta.Format(time.RFC3339))
}

func TestDayRange_CambioDeHorario(t *testing.T) {
	clock, err := tiempo.New("Europe/Madrid")
	require.NoError(t, err)

	desde, hasta := clock.DayRange(clock.Fecha(time.Date(2024, 3, 31, 12, 0, 0, 0, clock.Location())))
	assert.Equal(t, 23*time.Hour, hasta.Sub(desde))

	desde, hasta = clock.DayRange(time.Date(2024, 10, 27, 12, 0, 0, 0, clock.Location()))
	assert.Equal(t, 25*time.Hour, hasta.Sub(desde))
	assert.Equal(t, "2024-10-28", tiempo.Civil(clock.SiguienteDia(desde)))
}

func TestParseFecha(t *testing.T) {
	clock, err := tiempo.New("America/Santiago")
	require.NoError(t, err)

	f, err := clock.ParseFecha("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", tiempo.Civil(f))
	assert.Equal(t, clock.Location(), f.Location())

	for _, bad := range []string{"", "2024-2-29", "29/02/2024", "2023-02-29", "hoy"} {
		_, err := clock.ParseFecha(bad)
		assert.ErrorIs(t, err, tiempo.ErrFechaInvalida, bad)
	}
}

func TestHoyConRelojFijo(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	clock := tiempo.NewFijo(loc, time.Date(2024, 3, 16, 1, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-15", tiempo.Civil(clock.Hoy()))
	assert.Equal(t, loc, clock.Now().Location())
	assert.True(t, clock.MismoDia(clock.Now(), time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)))
	assert.False(t, clock.MismoDia(clock.Now(), time.Date(2024, 3, 15, 2, 59, 0, 0, time.UTC)))
}

func TestDesdeCivil(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	clock := tiempo.NewFijo(loc, time.Now())

	// A Postgres date comes back as UTC midnight. Converting it with In()
	// would land on the previous day.
	columna := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-14", tiempo.Civil(clock.Fecha(columna)))
	assert.Equal(t, "2024-03-15", tiempo.Civil(clock.DesdeCivil(columna)))
	assert.Equal(t, loc, clock.DesdeCivil(columna).Location())
}

func TestMismaFecha(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	assert.True(t, tiempo.MismaFecha(
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, loc),
	))
	assert.False(t, tiempo.MismaFecha(
		time.Date(2024, 3, 15, 0, 0, 0, 0, loc),
		time.Date(2024, 3, 16, 0, 0, 0, 0, loc),
	))
}

func TestNew_ZonaDesconocida(t *testing.T) {
	_, err := tiempo.New("Marte/Olympus")
	assert.Error(t, err)
}
