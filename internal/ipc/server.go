package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

const (
	requestReadTimeout = 2 * time.Second
	maxRequestBytes    = 64 << 10
)

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers one request per connection until ctx is cancelled or the
// listener is closed. In-flight handlers finish before Serve returns.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			wg.Wait()
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			serveConn(ctx, conn, handler)
		}()
	}
}

func serveConn(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))
	req, err := readRequest(conn)
	if err != nil {
		_ = writeLine(conn, Response{OK: false, Error: err.Error()})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	_ = writeLine(conn, handler.Handle(ctx, req))
}

func readRequest(conn net.Conn) (Request, error) {
	line, err := readLine(conn, maxRequestBytes)
	if err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}

	var req Request
	if err := decodeLine(line, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}
