package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmhx/GopherIndexer/internal/transport"
)

// serveOnce accepts a single connection on l, writes body, then closes.
func serveOnce(t *testing.T, l net.Listener, body []byte) {
	t.Helper()
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		_, _ = conn.Read(buf) // drain the selector request

		_, _ = conn.Write(body)
	}()
}

func listen(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	return l, "127.0.0.1", addr.Port
}

func TestSendRequestReadsToEOF(t *testing.T) {
	l, host, port := listen(t)
	defer l.Close()
	serveOnce(t, l, []byte("ihello\t\torigin\t70\r\n.\r\n"))

	c := transport.NewClient()
	body, err := c.SendRequest(context.Background(), host, port, "")
	require.NoError(t, err)
	assert.Contains(t, body, "ihello")
}

func TestReadBinaryReturnsExactBytes(t *testing.T) {
	l, host, port := listen(t)
	defer l.Close()

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	serveOnce(t, l, payload)

	c := transport.NewClient()
	data, err := c.ReadBinary(context.Background(), host, port, "/bin")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestProbeSucceedsAgainstListeningServer(t *testing.T) {
	l, host, port := listen(t)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	c := transport.NewClient()
	assert.True(t, c.Probe(context.Background(), host, port))
}

func TestProbeFailsAgainstClosedPort(t *testing.T) {
	l, host, port := listen(t)
	l.Close() // nothing listening now

	c := transport.NewClient()
	assert.False(t, c.Probe(context.Background(), host, port))
}

func TestSendRequestResponseTooLarge(t *testing.T) {
	l, host, port := listen(t)
	defer l.Close()

	big := make([]byte, transport.MaxTextResponseBytes+1)
	for i := range big {
		big[i] = 'a'
	}
	serveOnce(t, l, big)

	c := transport.NewClient()
	_, err := c.SendRequest(context.Background(), host, port, "")
	require.Error(t, err)
	assert.True(t, transport.IsKind(err, transport.KindResponseTooLarge))
}

func TestSendRequestExactCapAccepted(t *testing.T) {
	l, host, port := listen(t)
	defer l.Close()

	exact := make([]byte, transport.MaxTextResponseBytes)
	for i := range exact {
		exact[i] = 'a'
	}
	serveOnce(t, l, exact)

	c := transport.NewClient()
	body, err := c.SendRequest(context.Background(), host, port, "")
	require.NoError(t, err)
	assert.Len(t, body, transport.MaxTextResponseBytes)
}

func TestConnectRetriesThenFails(t *testing.T) {
	// Port with nothing listening; connect should retry MaxConnectAttempts
	// times before surfacing the error, taking at least the backoff sleep.
	l, host, port := listen(t)
	l.Close()

	c := transport.NewClient()
	start := time.Now()
	ok := c.Probe(context.Background(), host, port)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond) // one backoff sleep between the two attempts
	assert.Less(t, elapsed, 3*time.Second)                  // bounded by MaxConnectAttempts, not hanging
}
