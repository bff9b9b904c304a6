package infra

import (
	"testing"

	"cajapos/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestMailer_NilNoEntraEnPanico(t *testing.T) {
	var m *Mailer

	assert.NotPanics(t, func() {
		assert.False(t, m.Configured())
		assert.Equal(t, CBClosed, m.CircuitState())
		assert.ErrorIs(t, m.SendReporte("a@b.c", "s", "b", "x.pdf", nil), ErrSinSMTP)
	})
}

func TestMailer_SinHostNoEnvia(t *testing.T) {
	m := NewMailer(&config.Config{SMTPPort: 587})

	assert.False(t, m.Configured())
	assert.Equal(t, CBClosed, m.CircuitState())
	assert.ErrorIs(t, m.SendReporte("a@b.c", "s", "b", "x.pdf", []byte("%PDF")), ErrSinSMTP)
}
