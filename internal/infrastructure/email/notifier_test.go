package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

func TestSendBuildsMessage(t *testing.T) {
	t.Parallel()

	n := NewNotifier(Config{
		Host:     "smtp.example.org",
		Username: "bot",
		Password: "pw",
		From:     "Tracker <bot@example.org>",
		To:       []string{"me@example.org"},
	})

	var calls []smtp.Auth
	var got *email.Email
	var gotAddr string
	n.send = func(m *email.Email, addr string, auth smtp.Auth) error {
		calls = append(calls, auth)
		got, gotAddr = m, addr
		if auth != nil {
			return errors.New("smtp: server doesn't support AUTH")
		}
		return nil
	}

	require.NoError(t, n.Send(context.Background(), "Results", "body"))
	require.Len(t, calls, 2, "falls back to unauthenticated delivery")
	require.Nil(t, calls[1])
	require.Equal(t, "smtp.example.org:587", gotAddr)
	require.Equal(t, "Results", got.Subject)
	require.Equal(t, []byte("body"), got.Text)
	require.Equal(t, []string{"me@example.org"}, got.To)
}

func TestSendMisconfigured(t *testing.T) {
	t.Parallel()

	err := NewNotifier(Config{Host: "smtp.example.org"}).Send(context.Background(), "t", "b")
	require.ErrorIs(t, err, ErrMisconfigured)
}
