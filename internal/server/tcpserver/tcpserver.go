package tcpserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/tombowditch/geojsonio/geojsonio"
	"github.com/tombowditch/geojsonio/internal/config"
	"github.com/tombowditch/geojsonio/internal/payload"
	"github.com/tombowditch/geojsonio/internal/ratelimit"
)

// ReferenceBuilder builds viewer URLs. *geojsonio.Builder implements it.
type ReferenceBuilder interface {
	BuildReference(ctx context.Context, payload string, opts geojsonio.BuildOptions) (string, error)
}

// Server holds dependencies for the TCP server.
type Server struct {
	builder ReferenceBuilder
	limiter ratelimit.Limiter
}

// New creates a new TCP server. A nil limiter disables rate limiting.
func New(b ReferenceBuilder, l ratelimit.Limiter) *Server {
	if l == nil {
		l = ratelimit.Unlimited{}
	}
	return &Server{builder: b, limiter: l}
}

// Serve starts listening on the given address and handles connections.
// This function blocks until the listener fails.
func (s *Server) Serve(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	slog.Info("tcp server listening", "addr", addr)
	return s.ServeListener(l)
}

// ServeListener handles connections accepted from l until it is closed.
func (s *Server) ServeListener(l net.Listener) error {
	defer l.Close()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				slog.Error("error accepting connection", "error", err)
				continue
			}
			return err
		}
		go s.handleRequest(conn)
	}
}

func (s *Server) handleRequest(conn net.Conn) {
	defer conn.Close()

	cip, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		cip = conn.RemoteAddr().String()
	}

	// Check rate limit before reading
	if !s.limiter.Allow(cip) {
		slog.Warn("rate limit exceeded", "ip", cip)
		conn.Write([]byte("rate limit exceeded\r\n"))
		return
	}

	msg, err := readPayload(conn)
	if err != nil {
		slog.Error("read error", "error", err, "ip", cip)
		conn.Write([]byte("read err\r\n"))
		return
	}

	if err := payload.Validate(msg); err != nil {
		if ve, ok := err.(*payload.ValidationError); ok {
			conn.Write([]byte(ve.Message + "\r\n"))
		} else {
			conn.Write([]byte("error\r\n"))
		}
		return
	}

	u, err := s.builder.BuildReference(context.Background(), string(msg), geojsonio.BuildOptions{})
	if err != nil {
		if !geojsonio.IsOversize(err) {
			slog.Error("building reference failed", "error", err, "ip", cip)
		}
		conn.Write([]byte(errorMessage(err) + "\r\n"))
		return
	}

	slog.Info("built reference via TCP", "size", len(msg), "remote", cip)
	conn.Write([]byte(u + "\r\n"))
}

// readPayload reads until EOF or until the client goes quiet. Payloads over
// the limit are cut to one byte past it so Validate rejects them.
func readPayload(conn net.Conn) ([]byte, error) {
	msg := make([]byte, 0)
	buf := make([]byte, 32*1024)

	conn.SetReadDeadline(time.Now().Add(config.TCPFirstReadTimeout))

	for {
		n, err := conn.Read(buf)
		msg = append(msg, buf[:n]...)
		if len(msg) > config.MaxPayloadSize {
			return msg[:config.MaxPayloadSize+1], nil
		}
		if err != nil {
			if netErr, ok := err.(net.Error); err != io.EOF && (!ok || !netErr.Timeout()) {
				return nil, err
			}
			return msg, nil
		}

		conn.SetReadDeadline(time.Now().Add(config.TCPReadTimeout))
	}
}

func errorMessage(err error) string {
	switch geojsonio.CodeOf(err) {
	case geojsonio.ErrOversize:
		return "payload too big"
	case geojsonio.ErrStoreUnavailable:
		return "too big to inline and gist storage is not configured"
	case geojsonio.ErrStoreRequest:
		return "error, could not create gist"
	default:
		return "error"
	}
}
