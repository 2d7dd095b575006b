package devicelink

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultPort is the TCP port the device firmware listens on.
const DefaultPort = 7777

const defaultDialTimeout = 3 * time.Second

type tcpTransport struct {
	conn net.Conn
}

// dialTCP connects to the device's WiFi control server. Nagle's algorithm is
// disabled so small command frames are not held back, and keepalive is
// enabled so a powered-off device eventually surfaces as a closed connection
// instead of a silent stall.
func dialTCP(host string, port int, timeout time.Duration) (*tcpTransport, error) {
	if port <= 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to disable nagle on %s: %w", addr, err)
		}
		if err := tcpConn.SetKeepAlive(true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable keepalive on %s: %w", addr, err)
		}
	}

	return &tcpTransport{conn: conn}, nil
}

func (t *tcpTransport) Write(p []byte) (int, error) {
	if t.conn == nil {
		return 0, ErrNotConnected
	}
	n, err := t.conn.Write(p)
	if err != nil {
		return n, fmt.Errorf("failed to write to device socket: %w", err)
	}
	return n, nil
}

func (t *tcpTransport) ReadAvailable() ([]byte, error) {
	if t.conn == nil {
		return nil, ErrNotConnected
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(readSlice)); err != nil {
		return nil, fmt.Errorf("failed to arm read deadline: %w", err)
	}

	buf := make([]byte, readChunkSize)
	n, err := t.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		return nil, nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil, nil
	}
	if errors.Is(err, io.EOF) {
		return nil, ErrConnectionClosed
	}
	return nil, fmt.Errorf("failed to read from device socket: %w", err)
}

func (t *tcpTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
