package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestSendWaitlistConfirmation(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSender("smtp.local", 587, "u", "p", "nao-responda@liguemedicina.com", "Ligue")
	s.dialer = d

	require.NoError(t, s.SendWaitlistConfirmation(context.Background(), "ana@example.com", "Ana"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"nao-responda@liguemedicina.com"}, m.GetHeader("From"))
	assert.Contains(t, m.GetHeader("Subject")[0], "lista de espera")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Ana")
}

func TestSendWaitlistConfirmation_EscapesName(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "u", "p", "from@x.com", "Ligue")
	m, err := s.waitlistMessage("a@b.com", "<script>")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestSendWaitlistConfirmation_SMTPError(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "u", "p", "from@x.com", "Ligue")
	s.dialer = &fakeDialer{err: errors.New("connection refused")}

	err := s.SendWaitlistConfirmation(context.Background(), "a@b.com", "A")
	assert.ErrorContains(t, err, "connection refused")
	// SMTP fora do ar é temporário, o worker tenta de novo
	assert.False(t, queue.IsPermanent(err))
}
