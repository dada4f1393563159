package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"
)

// Responses carry at most a summary line, but leave headroom for errors
// that quote upstream messages.
const maxResponseBytes = 256 << 10

// Send performs one request/response exchange with the owner, bounded by timeout.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}
	if err := writeLine(conn, req); err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	line, err := readLine(conn, maxResponseBytes)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	var resp Response
	if err := decodeLine(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// Probe checks whether a responsive owner is currently listening on path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	_, err := Send(ctx, path, Request{Command: CommandStatus}, timeout)
	if err == nil {
		return true, nil
	}
	if isSocketMissing(err) || isConnectionRefused(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// writeLine frames v as one newline-terminated JSON document.
func writeLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// readLine returns the first line from r without its terminator. An empty
// stream is io.ErrUnexpectedEOF.
func readLine(r io.Reader, limit int) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), limit)
	if scanner.Scan() {
		return scanner.Bytes(), nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

func decodeLine(line []byte, v any) error {
	return json.Unmarshal(line, v)
}

func isSocketMissing(err error) bool {
	return err != nil && errors.Is(err, os.ErrNotExist)
}

func isConnectionRefused(err error) bool {
	return err != nil && errors.Is(err, syscall.ECONNREFUSED)
}
