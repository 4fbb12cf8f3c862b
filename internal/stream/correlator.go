package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Sender is the outbound half of a connection. *transport satisfies it.
type Sender interface {
	Send(data []byte) error
}

// Correlator matches command responses to in-flight commands by ID. All
// commands on a connection share one monotonically increasing ID sequence.
// A Correlator is scoped to a single connection: discard it on reconnect
// after calling FailAll.
type Correlator struct {
	nextID int64 // atomic

	mu      sync.Mutex
	pending map[int64]chan Response
	failed  bool
}

// NewCorrelator creates a correlator for a fresh connection.
func NewCorrelator() *Correlator {
	return &Correlator{
		pending: make(map[int64]chan Response),
	}
}

// Do sends a command over s and waits for the matching response.
func (c *Correlator) Do(ctx context.Context, s Sender, cmd string, params interface{}, timeout time.Duration) (Response, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	respCh := make(chan Response, 1)

	c.mu.Lock()
	if c.failed {
		c.mu.Unlock()
		return Response{}, ErrConnectionLost
	}
	c.pending[id] = respCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	data, err := json.Marshal(Command{ID: id, Cmd: cmd, Params: params})
	if err != nil {
		return Response{}, fmt.Errorf("marshal command: %w", err)
	}
	if err := s.Send(data); err != nil {
		return Response{}, fmt.Errorf("send %s command: %w", cmd, err)
	}

	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-time.After(timeout):
		return Response{}, ErrTimeout
	case resp, ok := <-respCh:
		if !ok {
			return Response{}, ErrConnectionLost
		}
		if resp.Type == "error" {
			var errMsg ErrorMsg
			json.Unmarshal(resp.Msg, &errMsg)
			return resp, fmt.Errorf("%s command rejected: %s: %s", cmd, errMsg.Code, errMsg.Message)
		}
		return resp, nil
	}
}

// Resolve delivers a response to the waiting goroutine. Returns false when no
// command is pending for the response ID (late or duplicate response).
func (c *Correlator) Resolve(resp Response) bool {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.mu.Unlock()

	if ok {
		select {
		case ch <- resp:
		default:
		}
	}
	return ok
}

// FailAll unblocks every in-flight command with ErrConnectionLost and rejects
// subsequent Do calls. Called when the underlying connection drops.
func (c *Correlator) FailAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed {
		return
	}
	c.failed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// TryParseResponse attempts to parse raw bytes as a command response. Any
// frame carrying a top-level "id" is a response to an in-flight command,
// whatever its type; push data messages carry a "sid" instead and fall
// through.
func TryParseResponse(data []byte) (Response, bool) {
	if !bytes.Contains(data, []byte(`"id":`)) {
		return Response{}, false
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, false
	}
	if resp.ID == 0 {
		return Response{}, false
	}

	return resp, true
}
