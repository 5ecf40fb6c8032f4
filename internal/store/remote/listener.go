package remote

import (
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"pool-tracker-service/internal/logging"
)

const (
	listenerMinReconnect = 5 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// channelFor maps a relation to its notification channel.
func channelFor(rel Relation) string {
	return string(rel) + "_changed"
}

// Subscription is a live change feed for one relation. Callers must Close it
// on teardown to stop the listener goroutine.
type Subscription struct {
	listener  *pq.Listener
	done      chan struct{}
	closeOnce sync.Once
}

// Close releases the listener and stops the dispatch goroutine.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.listener.Close()
	})
	return err
}

// Subscribe registers onChange to run on any insert/update/delete notification
// for the given relation. Notifications carry no payload; callers are expected
// to re-fetch and reconcile.
func (g *Gateway) Subscribe(rel Relation, onChange func()) (*Subscription, error) {
	listener := pq.NewListener(g.conninfo, listenerMinReconnect, listenerMaxReconnect, nil)
	if err := listener.Listen(channelFor(rel)); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", channelFor(rel), err)
	}

	sub := &Subscription{listener: listener, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-sub.done:
				return
			case n := <-listener.Notify:
				// A nil notification signals a connection reset; the data may
				// have changed while disconnected, so treat it as a change.
				if n == nil {
					logging.Warn(g.logger, "change listener reconnected", logging.FieldRelation, string(rel))
				}
				onChange()
			case <-time.After(listenerPingInterval):
				if err := listener.Ping(); err != nil {
					logging.Warn(g.logger, "change listener ping failed",
						logging.FieldRelation, string(rel), "error", err)
				}
			}
		}
	}()
	return sub, nil
}
