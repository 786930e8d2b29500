package embersock

import (
	"net"
	"sync"
	"testing"
	"time"
)

func TestDefaultTuning(t *testing.T) {
	tuning := DefaultTuning()
	if !tuning.NoDelay {
		t.Error("NoDelay should be true by default")
	}
	if !tuning.KeepAlive {
		t.Error("KeepAlive should be true by default")
	}
	if tuning.RecvBuffer != 256*1024 {
		t.Errorf("RecvBuffer = %d, want %d", tuning.RecvBuffer, 256*1024)
	}
}

func TestTCPFactoryListenAndSecure(t *testing.T) {
	f := &TCPFactory{}
	if f.Secure() {
		t.Error("TCPFactory must not report Secure")
	}
	ln, err := f.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	if ln.Addr() == nil {
		t.Fatal("expected non-nil listener address")
	}
}

func TestServeDispatchesToHandle(t *testing.T) {
	f := &TCPFactory{}
	ln, err := f.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		_ = Serve(ln, f, nil, nil, 0, func(conn net.Conn, secure bool) {
			defer wg.Done()
			if secure {
				t.Error("expected insecure connection")
			}
			buf := make([]byte, 5)
			_, _ = conn.Read(buf)
		})
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_, _ = conn.Write([]byte("hello"))
	conn.Close()

	wg.Wait()
	ln.Close()
}
