package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// RefreshFunc exchanges the current token for a fresh one at the identity
// provider. A nil current token means no session is held yet.
type RefreshFunc func(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error)

// Refresher keeps the bridge's session alive by refreshing it on a fixed
// schedule. A failed refresh leaves the current token in place; the next tick
// retries.
type Refresher struct {
	bridge   *Bridge
	refresh  RefreshFunc
	interval time.Duration
	log      *zap.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRefresher(bridge *Bridge, refresh RefreshFunc, interval time.Duration, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		bridge:   bridge,
		refresh:  refresh,
		interval: interval,
		log:      log,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (r *Refresher) Start() error {
	if r.refresh == nil {
		r.log.Warn("no refresh function set, session refresher disabled")
		return nil
	}
	_, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), r.tick)
	if err != nil {
		return fmt.Errorf("schedule session refresh: %w", err)
	}
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.cancel()
}

func (r *Refresher) tick() {
	current, err := r.bridge.Token()
	if err != nil {
		// Nothing to refresh until a session is established.
		return
	}
	fresh, err := r.refresh(r.ctx, current)
	if err != nil {
		r.log.Warn("session refresh failed", zap.Error(err))
		return
	}
	r.bridge.SetSession(fresh)
	r.log.Debug("session refreshed", zap.Time("expiry", fresh.Expiry))
}
