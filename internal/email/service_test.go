package email

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/pdf-api/internal/config"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPService_SendWelcome(t *testing.T) {
	d := &recordingDialer{}
	svc := NewSMTPService(d, "no-reply@example.com")

	require.NoError(t, svc.SendWelcome(context.Background(), "alice@example.com", "Alice"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"no-reply@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{`"Alice" <alice@example.com>`}, m.GetHeader("To"))
	assert.Equal(t, []string{"Welcome to the PDF Generation API"}, m.GetHeader("Subject"))
}

func TestSMTPService_SendFailure(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	svc := NewSMTPService(d, "no-reply@example.com")

	err := svc.SendWelcome(context.Background(), "alice@example.com", "Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewService_DisabledIsNoop(t *testing.T) {
	svc := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	_, ok := svc.(noopService)
	assert.True(t, ok)
	assert.NoError(t, svc.SendWelcome(context.Background(), "alice@example.com", "Alice"))
}
