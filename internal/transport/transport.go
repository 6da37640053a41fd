// Package transport implements the bounded, retried, timeout-guarded
// request/response layer beneath the Gopher indexer: one TCP dialog at a
// time, connect with retry/backoff, send a selector, and read either a
// size-capped text response or an uncapped binary response.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	deadlock "github.com/sasha-s/go-deadlock"
)

const (
	// ConnectTimeout bounds a single connect attempt.
	ConnectTimeout = 2000 * time.Millisecond
	// ReadTimeout bounds a single read syscall once connected.
	ReadTimeout = 5000 * time.Millisecond
	// MaxConnectAttempts is the total number of connect attempts
	// (including the first) before the connect failure is surfaced.
	MaxConnectAttempts = 2
	// MaxTextResponseBytes is the hard cap on an accumulated text
	// response body; exceeding it fails the request with
	// KindResponseTooLarge.
	MaxTextResponseBytes = 1 << 20 // 1 MiB

	requestTerminator = "\r\n"
)

// Client performs Gopher request/response dialogs. Its zero value is ready
// to use. A Client opens one fresh connection per request rather than
// reusing a long-lived socket, and serializes all requests through a guard
// mutex. The crawl that drives a Client is strictly sequential, so the
// mutex is never contended in normal operation — an accidental concurrent
// call is serialized behind it instead of racing, and go-deadlock reports
// a lock that is re-acquired by its holder or waited on past its timeout.
type Client struct {
	mu deadlock.Mutex
}

// NewClient returns a ready-to-use Client.
func NewClient() *Client {
	return &Client{}
}

// connection is a transient per-request TCP dialog.
type connection struct {
	conn net.Conn
	addr string
}

// connect dials host:port with a connect timeout, retrying on failure:
// close any partially-opened socket, sleep (2^attempt)*100ms (attempt
// counted from 0), and retry up to MaxConnectAttempts times, surfacing the
// last error.
func connect(ctx context.Context, host string, port int) (*connection, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var lastErr error

	b := &backoff.ExponentialBackOff{
		InitialInterval:     100 * time.Millisecond,
		Multiplier:          2,
		RandomizationFactor: 0,
		MaxInterval:         time.Hour, // effectively unbounded; MaxConnectAttempts caps attempts
		MaxElapsedTime:      0,         // unbounded by elapsed time; attempt count is the only cap
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	for attempt := 0; attempt < MaxConnectAttempts; attempt++ {
		dialer := net.Dialer{Timeout: ConnectTimeout}
		c, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return &connection{conn: c, addr: addr}, nil
		}

		lastErr = err

		if attempt == MaxConnectAttempts-1 {
			break
		}

		wait := b.NextBackOff()
		select {
		case <-ctx.Done():
			return nil, &Error{Kind: KindConnectOther, Op: "connect", Addr: addr, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}

	return nil, &Error{Kind: classifyConnectErr(lastErr), Op: "connect", Addr: addr, Err: lastErr}
}

func classifyConnectErr(err error) Kind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindConnectTimeout
	}
	if strings.Contains(err.Error(), "refused") {
		return KindConnectRefused
	}
	return KindConnectOther
}

func (c *connection) close() {
	_ = c.conn.Close()
}

// writeSelector writes selector+CRLF to the connection, applying the read
// timeout as the write deadline too (the same fixed budget covers both
// halves of one request).
func (c *connection) writeSelector(selector string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte(selector + requestTerminator))
	return err
}

// normalizeLines splits raw on "\n", strips a trailing "\r" from each line
// (the other half of a server's CR LF line ending), and rejoins with a bare
// "\n", giving callers plain UTF-8 text regardless of which line ending the
// origin used on the wire.
func normalizeLines(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return strings.Join(lines, "\n")
}

// SendRequest writes selector+CRLF and reads the response until EOF,
// returning it as UTF-8 text with every line's ending normalized to a bare
// "\n". The accumulated body is capped at MaxTextResponseBytes; exceeding it
// fails the request with KindResponseTooLarge and discards what was read.
func (c *Client) SendRequest(ctx context.Context, host string, port int, selector string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := connect(ctx, host, port)
	if err != nil {
		return "", err
	}
	defer conn.close()

	if err := conn.writeSelector(selector); err != nil {
		return "", &Error{Kind: KindConnectOther, Op: "sendRequest", Addr: conn.addr, Err: err}
	}

	var body strings.Builder
	buf := make([]byte, 32*1024)
	for {
		if err := conn.conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
			return "", &Error{Kind: KindConnectOther, Op: "sendRequest", Addr: conn.addr, Err: err}
		}
		n, readErr := conn.conn.Read(buf)
		if n > 0 {
			if body.Len()+n > MaxTextResponseBytes {
				return "", &Error{Kind: KindResponseTooLarge, Op: "sendRequest", Addr: conn.addr, Err: fmt.Errorf("response exceeded %d bytes", MaxTextResponseBytes)}
			}
			body.Write(buf[:n])
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			var netErr net.Error
			if errors.As(readErr, &netErr) && netErr.Timeout() {
				return "", &Error{Kind: KindReadTimeout, Op: "sendRequest", Addr: conn.addr, Err: readErr}
			}
			return "", &Error{Kind: KindConnectOther, Op: "sendRequest", Addr: conn.addr, Err: readErr}
		}
	}

	return normalizeLines(body.String()), nil
}

// ReadBinary writes selector+CRLF and reads raw bytes until EOF into a
// buffer, with no size cap. A malicious or misbehaving origin can make this
// allocate without bound; hardening it with a cap is future work.
func (c *Client) ReadBinary(ctx context.Context, host string, port int, selector string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := connect(ctx, host, port)
	if err != nil {
		return nil, err
	}
	defer conn.close()

	if err := conn.writeSelector(selector); err != nil {
		return nil, &Error{Kind: KindConnectOther, Op: "readBinary", Addr: conn.addr, Err: err}
	}

	var data []byte
	buf := make([]byte, 64*1024)
	for {
		if err := conn.conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
			return nil, &Error{Kind: KindConnectOther, Op: "readBinary", Addr: conn.addr, Err: err}
		}
		n, readErr := conn.conn.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			var netErr net.Error
			if errors.As(readErr, &netErr) && netErr.Timeout() {
				return nil, &Error{Kind: KindReadTimeout, Op: "readBinary", Addr: conn.addr, Err: readErr}
			}
			return nil, &Error{Kind: KindConnectOther, Op: "readBinary", Addr: conn.addr, Err: readErr}
		}
	}

	return data, nil
}

// Probe performs only the connect phase: success reports true, any
// connect-phase error reports false.
func (c *Client) Probe(ctx context.Context, host string, port int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := connect(ctx, host, port)
	if err != nil {
		return false
	}
	conn.close()
	return true
}
