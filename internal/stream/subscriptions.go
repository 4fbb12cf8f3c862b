package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Subscriptions tracks active channel subscriptions on one connection and
// issues subscribe/unsubscribe commands through a Correlator. Like the
// Correlator it is per-connection state: call Reset after a reconnect.
type Subscriptions struct {
	corr    *Correlator
	timeout time.Duration

	mu   sync.Mutex
	sids map[string]int64 // channel → sid
}

// NewSubscriptions creates subscription state bound to a correlator.
func NewSubscriptions(corr *Correlator, timeout time.Duration) *Subscriptions {
	return &Subscriptions{
		corr:    corr,
		timeout: timeout,
		sids:    make(map[string]int64),
	}
}

// Subscribe subscribes to a channel. Idempotent: re-subscribing to an already
// active channel is a no-op.
func (s *Subscriptions) Subscribe(ctx context.Context, snd Sender, channel string) (int64, error) {
	s.mu.Lock()
	if sid, ok := s.sids[channel]; ok {
		s.mu.Unlock()
		return sid, nil
	}
	s.mu.Unlock()

	resp, err := s.corr.Do(ctx, snd, "subscribe", SubscribeParams{
		Channels: []string{channel},
	}, s.timeout)
	if err != nil {
		return 0, err
	}

	var msg SubscribedMsg
	json.Unmarshal(resp.Msg, &msg)

	s.mu.Lock()
	s.sids[channel] = msg.SID
	s.mu.Unlock()

	return msg.SID, nil
}

// Unsubscribe drops an active subscription.
func (s *Subscriptions) Unsubscribe(ctx context.Context, snd Sender, channel string) error {
	s.mu.Lock()
	sid, ok := s.sids[channel]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	_, err := s.corr.Do(ctx, snd, "unsubscribe", UnsubscribeParams{
		SIDs: []int64{sid},
	}, s.timeout)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sids, channel)
	s.mu.Unlock()

	return nil
}

// Active returns the sid for a channel, if subscribed.
func (s *Subscriptions) Active(channel string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid, ok := s.sids[channel]
	return sid, ok
}

// Reset clears all tracked subscriptions. Server-side state does not survive
// a disconnect, so local state must not either.
func (s *Subscriptions) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sids = make(map[string]int64)
}
