package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/grievance-service/internal/config"
)

func TestNewSelectsMailer(t *testing.T) {
	_, ok := New(config.SMTPConfig{}, zap.NewNop()).(*LogMailer)
	require.True(t, ok)

	_, ok = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, zap.NewNop()).(*SMTPMailer)
	require.True(t, ok)
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	var gotAuth smtp.Auth
	m := &SMTPMailer{
		cfg: config.SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p"},
		send: func(addr string, a smtp.Auth, from string, to []string, body []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotBody = addr, a, from, to, body
			return nil
		},
	}
	err := m.Send(context.Background(), Message{From: "noreply@city.gov", To: "c@city.gov", Subject: "Hi", Body: "line1\nline2"})
	require.NoError(t, err)
	require.Equal(t, "smtp.example.com:2525", gotAddr)
	require.NotNil(t, gotAuth)
	require.Equal(t, "noreply@city.gov", gotFrom)
	require.Equal(t, []string{"c@city.gov"}, gotTo)
	require.Contains(t, string(gotBody), "Subject: Hi\r\n")
	require.True(t, strings.HasSuffix(string(gotBody), "line1\r\nline2"))
}

func TestSMTPMailerErrors(t *testing.T) {
	m := &SMTPMailer{
		cfg: config.SMTPConfig{Host: "smtp.example.com", Port: 25},
		send: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		},
	}
	require.Error(t, m.Send(context.Background(), Message{To: ""}))

	err := m.Send(context.Background(), Message{To: "c@city.gov"})
	require.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Send(ctx, Message{To: "c@city.gov"}), context.Canceled)
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := &LogMailer{logger: zap.New(core)}
	require.NoError(t, m.Send(context.Background(), Message{To: "c@city.gov", Subject: "S"}))
	require.Equal(t, 1, logs.FilterField(zap.String("to", "c@city.gov")).Len())
}

func TestCompose(t *testing.T) {
	date := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := string(Compose(Message{From: "a", To: "b", Subject: "s", Body: "x"}, date))
	require.Equal(t, "From: a\r\nTo: b\r\nSubject: s\r\nDate: Fri, 02 Jan 2026 03:04:05 +0000\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\nx", out)
}
