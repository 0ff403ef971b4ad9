package phoenix

import (
	"context"
	"sync"
	"time"

	"github.com/pqsgate/pqsgate/mods/logging"
)

// DefaultWarmupGrace gives the backing cluster time to finish booting before
// the first connection attempt.
const DefaultWarmupGrace = 30 * time.Second

// Warmup drives the connection's open sequence once in the background at
// process start. Its failure never gates startup: the first real caller
// opens lazily regardless.
type Warmup struct {
	log   logging.Log
	conn  *Conn
	grace time.Duration
	stop  chan struct{}
	once  sync.Once
}

func NewWarmup(conn *Conn, grace time.Duration) *Warmup {
	if grace <= 0 {
		grace = DefaultWarmupGrace
	}
	return &Warmup{
		log:   logging.GetLog("phoenix-warmup"),
		conn:  conn,
		grace: grace,
		stop:  make(chan struct{}),
	}
}

func (w *Warmup) Start() error {
	go w.run()
	return nil
}

func (w *Warmup) Stop() {
	w.once.Do(func() { close(w.stop) })
}

func (w *Warmup) run() {
	w.log.Infof("waiting %s before first connection attempt", w.grace)
	select {
	case <-w.stop:
		return
	case <-time.After(w.grace):
	}
	if err := w.conn.Open(context.Background()); err != nil {
		w.log.Warnf("warm-up open failed, connection will be opened by the first request, %s", err.Error())
		return
	}
	w.log.Infof("warm-up connection established via %s transport", w.conn.ActiveTransport())
}
