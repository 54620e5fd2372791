package smtp

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeServer отвечает как SMTP-сервер без поддержки STARTTLS.
func fakeServer(t *testing.T) (host, port string) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		_, _ = io.WriteString(conn, "220 localhost ESMTP\r\n")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_, _ = io.WriteString(conn, "250-localhost\r\n250 8BITMIME\r\n")
			case strings.HasPrefix(line, "QUIT"):
				_, _ = io.WriteString(conn, "221 bye\r\n")
				return
			default:
				_, _ = io.WriteString(conn, "250 OK\r\n")
			}
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestTransportConnectRequiresStartTLS(t *testing.T) {
	host, port := fakeServer(t)
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port, SMTPUser: "bot@example.com"}, newNoopLogger())

	client, err := tr.Connect()
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrNoStartTLS)
}

func TestTransportConnectDialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	_, err = NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger()).Connect()
	assert.Error(t, err)
}

func TestGetSMTPUser(t *testing.T) {
	tr := NewTransport(config.SMTP{SMTPUser: "bot@example.com"}, newNoopLogger())
	assert.Equal(t, "bot@example.com", tr.GetSMTPUser())
}
