package notification

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// overlapConn flags any two writes that run at the same time
type overlapConn struct {
	inFlight int32
	overlaps int32
	writes   int32
}

func (c *overlapConn) WriteMessage(messageType int, data []byte) error {
	if !atomic.CompareAndSwapInt32(&c.inFlight, 0, 1) {
		atomic.AddInt32(&c.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&c.writes, 1)
	atomic.StoreInt32(&c.inFlight, 0)
	return nil
}

func TestHubPushSerializesWritesPerConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &overlapConn{}
	hub.Register("user-1", conn)

	const pushers = 8
	var wg sync.WaitGroup
	wg.Add(pushers)
	for i := 0; i < pushers; i++ {
		go func() {
			defer wg.Done()
			hub.Push("user-1", map[string]string{"title": "ping"})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&conn.overlaps); got != 0 {
		t.Fatalf("%d overlapping writes on one connection, want 0", got)
	}
	if got := atomic.LoadInt32(&conn.writes); got != pushers {
		t.Errorf("got %d writes, want %d", got, pushers)
	}
}

func TestHubUnregisterDropsConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &overlapConn{}
	hub.Register("user-1", conn)
	hub.Unregister("user-1", conn)

	hub.Push("user-1", map[string]string{"title": "ping"})

	if got := atomic.LoadInt32(&conn.writes); got != 0 {
		t.Errorf("got %d writes after unregister, want 0", got)
	}
}
