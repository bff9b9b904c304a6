// Package tiempo centralises the shop's wall clock. Every business date is a
// civil date in the configured zone and every "day" is the half-open interval
// [00:00, 00:00 next day) in that zone.
package tiempo

import (
	"errors"
	"time"
)

const LayoutFecha = "2006-01-02"

var ErrFechaInvalida = errors.New("fecha invalida, use el formato AAAA-MM-DD")

// Clock yields the current instant in the shop's zone. The zero value is not
// usable; build it with New or NewFijo.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New loads the IANA zone by name.
func New(zona string) (*Clock, error) {
	loc, err := time.LoadLocation(zona)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFijo returns a clock frozen at t, for tests and batch tools.
func NewFijo(loc *time.Location, t time.Time) *Clock {
	return &Clock{loc: loc, now: func() time.Time { return t }}
}

func (c *Clock) Location() *time.Location { return c.loc }

func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// Hoy returns today's civil date as midnight in the shop zone.
func (c *Clock) Hoy() time.Time { return c.Fecha(c.Now()) }

// Fecha truncates t to the start of its civil day in the shop zone.
func (c *Clock) Fecha(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// DesdeCivil reinterprets a stored civil date (e.g. a Postgres `date`, which
// arrives as UTC midnight) as midnight of the same date in the shop zone.
func (c *Clock) DesdeCivil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// DayRange returns [start, end) for the civil day of fecha. The end is built
// from the calendar, not by adding 24h, so DST transitions stay correct.
func (c *Clock) DayRange(fecha time.Time) (time.Time, time.Time) {
	start := c.Fecha(fecha)
	end := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, c.loc)
	return start, end
}

// ParseFecha parses YYYY-MM-DD as a civil date in the shop zone.
func (c *Clock) ParseFecha(s string) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutFecha, s, c.loc)
	if err != nil {
		return time.Time{}, ErrFechaInvalida
	}
	return t, nil
}

// MismoDia reports whether the instants a and b fall on the same civil date.
func (c *Clock) MismoDia(a, b time.Time) bool {
	return c.Fecha(a).Equal(c.Fecha(b))
}

// Civil formats a value that already holds a civil date. Postgres `date`
// columns come back as UTC midnight, while dates built by Clock carry the shop
// zone; both format to the same YYYY-MM-DD.
func Civil(t time.Time) string { return t.Format(LayoutFecha) }

// MismaFecha compares two civil-date values regardless of their location.
func MismaFecha(a, b time.Time) bool { return Civil(a) == Civil(b) }

// SiguienteDia returns the civil date after fecha.
func (c *Clock) SiguienteDia(fecha time.Time) time.Time {
	_, end := c.DayRange(fecha)
	return end
}
