package transport

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sherr "hdfsshell/internal/errors"
	"hdfsshell/tunnel"
	"hdfsshell/util"
)

// TestTCPDialer_Connect verifies that TCPDialer can reach a local
// TCP server and exchange data.
func TestTCPDialer_Connect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("namenode\n")) //nolint:errcheck
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "namenode\n" {
		t.Errorf("got %q", got)
	}
}

// TestTCPDialer_ContextCancel verifies that a cancelled context stops the dial.
func TestTCPDialer_ContextCancel(t *testing.T) {
	d := &TCPDialer{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Dial(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestUnixDialer_Connect(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "s.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(conn, conn) //nolint:errcheck
	}()

	d := &UnixDialer{Timeout: time.Second}
	conn, err := d.Dial(context.Background(), "", sock)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("pwd\n")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "pwd\n" {
		t.Errorf("echo = %q", buf)
	}
}

func TestUnixDialer_MissingSocket(t *testing.T) {
	d := &UnixDialer{Timeout: time.Second}
	_, err := d.Dial(context.Background(), "", filepath.Join(t.TempDir(), "absent.sock"))
	var ne *sherr.NetworkError
	if !sherr.As(err, &ne) || ne.Op != "dial" {
		t.Fatalf("got %v, want a dial NetworkError", err)
	}
}

func TestSSHDialer_ConnectFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())
	d := NewSSHDialer(&tunnel.SSHConfig{
		Host:        "127.0.0.1",
		Port:        port,
		ConnTimeout: time.Second,
	}, util.NewLogger(0))
	defer d.Close()

	if _, err := d.Dial(context.Background(), "tcp", "nn:8020"); err == nil {
		t.Fatal("expected error when the gateway is unreachable")
	}
	if _, err := d.Run(context.Background(), "true", io.Discard, io.Discard); err == nil {
		t.Fatal("expected error when the gateway is unreachable")
	}
}

func TestStatelessDialers_Close(t *testing.T) {
	for _, d := range []Dialer{&TCPDialer{}, &UnixDialer{}} {
		if err := d.Close(); err != nil {
			t.Errorf("%T.Close: %v", d, err)
		}
	}
}

type fakeTunnel struct {
	connects int
	alive    bool
	closed   bool
}

func (f *fakeTunnel) Connect(context.Context) error { f.connects++; f.alive = true; return nil }

func (f *fakeTunnel) Dial(context.Context, string, string) (net.Conn, error) {
	c, s := net.Pipe()
	s.Close()
	return c, nil
}

func (f *fakeTunnel) Run(_ context.Context, command string, stdout, _ io.Writer) (int, error) {
	io.WriteString(stdout, command)
	return 3, nil
}

func (f *fakeTunnel) Close() error  { f.closed = true; return nil }
func (f *fakeTunnel) IsAlive() bool { return f.alive }

func TestSSHDialer_ReconnectsDroppedGateway(t *testing.T) {
	ft := &fakeTunnel{}
	d := &SSHDialer{tunnel: ft, config: &tunnel.SSHConfig{Host: "edge", Port: 22}, logger: util.NewLogger(0)}
	ctx := context.Background()

	conn, err := d.Dial(ctx, "tcp", "nn:8020")
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
	var out strings.Builder
	if code, err := d.Run(ctx, "hdfs dfs -ls /", &out, io.Discard); err != nil || code != 3 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	if out.String() != "hdfs dfs -ls /" || ft.connects != 1 {
		t.Errorf("out %q, connects %d", out.String(), ft.connects)
	}

	ft.alive = false
	if _, err := d.Run(ctx, "true", io.Discard, io.Discard); err != nil {
		t.Fatal(err)
	}
	if ft.connects != 2 {
		t.Errorf("connects = %d after the gateway dropped, want 2", ft.connects)
	}
	if err := d.Close(); err != nil || !ft.closed {
		t.Errorf("Close = %v, closed %v", err, ft.closed)
	}
}
