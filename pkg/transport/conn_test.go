package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestConnSendReceive(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(client)
	defer conn.Close()
	defer server.Close()

	// Peer reads what we send.
	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		done <- buf[:n]
	}()

	if err := conn.Send([]byte("version;")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := <-done; string(got) != "version;" {
		t.Errorf("peer received %q, want %q", got, "version;")
	}

	// We receive what the peer writes.
	go server.Write([]byte("v1.0;"))
	chunk, err := conn.Receive()
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(chunk) != "v1.0;" {
		t.Errorf("Receive() = %q, want %q", chunk, "v1.0;")
	}
}

func TestConnCloseUnblocksReceive(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn := NewConn(client)

	errCh := make(chan error, 1)
	go func() {
		_, err := conn.Receive()
		errCh <- err
	}()

	// Give the Receive a moment to block, then close.
	time.Sleep(10 * time.Millisecond)
	conn.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrConnectionLost) {
			t.Errorf("Receive error = %v, want ErrConnectionLost", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock after Close")
	}

	if err := conn.Send([]byte("x")); !errors.Is(err, ErrConnectionLost) {
		t.Errorf("Send after close = %v, want ErrConnectionLost", err)
	}

	// Close is idempotent.
	if err := conn.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestConnPeerFailureIsConnectionLost(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(client)
	defer conn.Close()

	server.Close()

	if _, err := conn.Receive(); !errors.Is(err, ErrConnectionLost) {
		t.Errorf("Receive error = %v, want ErrConnectionLost", err)
	}
}

func TestDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	conn, err := Dial(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if conn.ID() == "" {
		t.Error("ID() is empty")
	}
	if conn.RemoteAddr() == nil {
		t.Error("RemoteAddr() is nil")
	}

	peer := <-accepted
	peer.Close()
}

func TestDialHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Reserved TEST-NET-1 address; the canceled context must abort
	// before any timeout matters.
	if _, err := Dial(ctx, "192.0.2.1:40923"); err == nil {
		t.Fatal("Dial succeeded with canceled context")
	}
}

func TestPushConn(t *testing.T) {
	push, err := ListenPush(0)
	if err != nil {
		// ListenPush(0) binds the well-known port; skip when occupied.
		t.Skipf("push port unavailable: %v", err)
	}
	defer push.Close()

	if err := push.Send([]byte("x")); !errors.Is(err, ErrReceiveOnly) {
		t.Errorf("Send = %v, want ErrReceiveOnly", err)
	}

	sender, err := net.Dial("udp", push.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("udp dial failed: %v", err)
	}
	defer sender.Close()

	if _, err := sender.Write([]byte("chassis push position 1.0 2.0;")); err != nil {
		t.Fatalf("udp write failed: %v", err)
	}

	chunk, err := push.Receive()
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(chunk) != "chassis push position 1.0 2.0;" {
		t.Errorf("Receive() = %q", chunk)
	}
}

func TestPushConnCloseUnblocksReceive(t *testing.T) {
	push, err := ListenPush(0)
	if err != nil {
		t.Skipf("push port unavailable: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := push.Receive()
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	push.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrConnectionLost) {
			t.Errorf("Receive error = %v, want ErrConnectionLost", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock after Close")
	}
}
