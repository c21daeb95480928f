package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ornge/orange-services/internal/config"
	"github.com/ornge/orange-services/internal/domain/fridge"
	"github.com/ornge/orange-services/internal/domain/notification"
	"github.com/ornge/orange-services/internal/metrics"
	"github.com/ornge/orange-services/internal/storage"
	"github.com/ornge/orange-services/pkg/logger"
)

// Sweeper periodically scans fridge items and pushes grouped alerts to their
// owners. Three independent schedules cover expiring, low-stock and expired
// items.
type Sweeper struct {
	store  storage.FridgeStore
	sender Sender
	cfg    config.SweepConfig
	log    *logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSweeper constructs a sweeper; Start schedules it.
func NewSweeper(store storage.FridgeStore, sender Sender, cfg config.SweepConfig, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewDefault("sweeper")
	}
	return &Sweeper{
		store:  store,
		sender: sender,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the sweeper clock; tests use it to pin expiry math.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

func (s *Sweeper) Name() string { return "fridge-sweeper" }

// Start registers the three sweep schedules and begins running them.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	c := cron.New()
	schedules := []struct {
		every time.Duration
		run   func(context.Context) error
	}{
		{s.cfg.ExpiringEvery, s.SweepExpiring},
		{s.cfg.LowStockEvery, s.SweepLowStock},
		{s.cfg.ExpiredEvery, s.SweepExpired},
	}
	for _, sched := range schedules {
		run := sched.run
		spec := fmt.Sprintf("@every %s", sched.every)
		if _, err := c.AddFunc(spec, func() {
			if err := run(context.Background()); err != nil {
				s.log.WithError(err).Error("sweep failed")
			}
		}); err != nil {
			return fmt.Errorf("scheduling sweep %q: %w", spec, err)
		}
	}

	c.Start()
	s.cron = c
	s.running = true
	s.log.WithFields(map[string]interface{}{
		"expiring_every":  s.cfg.ExpiringEvery.String(),
		"low_stock_every": s.cfg.LowStockEvery.String(),
		"expired_every":   s.cfg.ExpiredEvery.String(),
	}).Info("fridge sweeper started")
	return nil
}

// Stop halts the schedules and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	done := s.cron.Stop().Done()
	s.cron = nil
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepExpiring alerts owners about items expiring within the configured
// window.
func (s *Sweeper) SweepExpiring(ctx context.Context) error {
	metrics.RecordSweepRun("expiring")
	items, err := s.store.ExpiringItems(ctx, s.cfg.ExpiringDays)
	if err != nil {
		return fmt.Errorf("fetching expiring items: %w", err)
	}
	now := s.now()
	return s.notifyGroups(ctx, "expiring", items, TitleExpiring, func(group []fridge.AlertItem) string {
		return FormatExpiring(now, group)
	})
}

// SweepLowStock alerts owners about items at or below the low-stock quantity.
func (s *Sweeper) SweepLowStock(ctx context.Context) error {
	metrics.RecordSweepRun("low_stock")
	items, err := s.store.LowStockItems(ctx, s.cfg.LowStockMax)
	if err != nil {
		return fmt.Errorf("fetching low stock items: %w", err)
	}
	return s.notifyGroups(ctx, "low_stock", items, TitleLowStock, FormatLowStock)
}

// SweepExpired alerts owners about items past their expiry date.
func (s *Sweeper) SweepExpired(ctx context.Context) error {
	metrics.RecordSweepRun("expired")
	items, err := s.store.ExpiredItems(ctx)
	if err != nil {
		return fmt.Errorf("fetching expired items: %w", err)
	}
	return s.notifyGroups(ctx, "expired", items, TitleExpired, FormatExpired)
}

// notifyGroups groups alert rows by owner and sends one notification per
// owner. A failed send is logged and the remaining owners still get theirs.
func (s *Sweeper) notifyGroups(ctx context.Context, sweep string, items []fridge.AlertItem, title string, format func([]fridge.AlertItem) string) error {
	if len(items) == 0 {
		return nil
	}

	groups := groupByClient(items)
	owners := make([]string, 0, len(groups))
	for clientID := range groups {
		owners = append(owners, clientID)
	}
	sort.Strings(owners)

	for _, clientID := range owners {
		msg := notification.Message{
			ClientID:  clientID,
			Title:     title,
			Body:      format(groups[clientID]),
			Type:      "fridge_" + sweep,
			Timestamp: s.now().UTC(),
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			metrics.RecordNotification("failed")
			s.log.WithError(err).WithFields(map[string]interface{}{
				"sweep":     sweep,
				"client_id": clientID,
			}).Error("failed to notify owner")
			continue
		}
		metrics.RecordNotification("sent")
	}
	return nil
}

func groupByClient(items []fridge.AlertItem) map[string][]fridge.AlertItem {
	groups := make(map[string][]fridge.AlertItem)
	for _, item := range items {
		groups[item.ClientID] = append(groups[item.ClientID], item)
	}
	return groups
}
