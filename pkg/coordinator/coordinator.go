package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/lifecycle"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/queue"
	"github.com/dmitrymomot/notifykit/pkg/trigger"
)

type runState int

const (
	stateIdle runState = iota
	stateRunning
	stateStopped
)

// Coordinator evaluates policy for every ready notification and either
// dispatches it to its channel, defers it to the queue or drops it.
type Coordinator struct {
	policy   Policy
	channels map[notifications.DeliveryType]notifications.Channel
	trigger  *trigger.Store
	queue    *queue.Queue
	tracker  *lifecycle.Tracker
	pool     *async.Pool
	observer Observer

	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	state runState
}

// New wires a coordinator around policy. Channels are registered with
// WithChannel; a delivery type without a channel is rejected at entry.
func New(policy Policy, opts ...Option) (*Coordinator, error) {
	if policy == nil {
		return nil, ErrPolicyNil
	}

	c := &Coordinator{
		policy:   policy,
		channels: make(map[notifications.DeliveryType]notifications.Channel),
		observer: noopObserver{},
		cfg:      DefaultConfig(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.withDefaults()
	c.logger = c.logger.With(logger.Component("coordinator"))

	c.tracker = lifecycle.NewTracker(c.cfg.StatusRetention,
		lifecycle.WithClock(c.now),
		lifecycle.WithLogger(c.logger),
	)
	c.pool = async.NewPool(c.cfg.MaxInFlight, c.cfg.DispatchTimeout, async.WithBacklog(c.cfg.DispatchBacklog))

	c.trigger = trigger.New(
		trigger.WithScanInterval(c.cfg.TriggerScanInterval),
		trigger.WithClock(c.now),
		trigger.WithLogger(c.logger.With(logger.Component("trigger"))),
		trigger.WithExpiredHandler(c.onTriggerExpired),
	)
	c.trigger.OnReady(c.onTriggered)

	c.queue = queue.New(
		queue.WithCapacity(c.cfg.QueueCapacity),
		queue.WithDrainInterval(c.cfg.QueueDrainInterval),
		queue.WithMinSpacing(c.cfg.QueueMinSpacing),
		queue.WithGate(c.policy.IsOutsideQuietHours),
		queue.WithClock(c.now),
		queue.WithLogger(c.logger.With(logger.Component("queue"))),
		queue.WithExpiredHandler(c.onQueueExpired),
	)
	c.queue.OnReady(c.onDrained)

	return c, nil
}

// ScheduleNotification stores n to become ready at the given time. Only
// validation failures are returned: an invalid record, a delivery type with
// no channel, an id already past scheduling, or a time in the past
// (trigger.ErrInvalidSchedule).
func (c *Coordinator) ScheduleNotification(ctx context.Context, n notifications.Notification, at time.Time) error {
	if err := c.validate(n); err != nil {
		return err
	}
	_, err := c.tracker.Admit(n, lifecycle.EventSchedule, func() error {
		return c.trigger.Schedule(n, at)
	})
	if lifecycle.IsNoTransition(err) {
		return fmt.Errorf("%w: %s cannot be scheduled again", ErrDuplicateID, n.ID)
	}
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "notification scheduled",
		logger.NotificationID(n.ID),
		logger.Category(n.Category),
		slog.Time("at", at),
	)
	return nil
}

// SendImmediate runs n through the policy path right away. The channel send
// itself happens in the background; its outcome is logged and observable
// through Status.
func (c *Coordinator) SendImmediate(ctx context.Context, n notifications.Notification) error {
	if err := c.validate(n); err != nil {
		return err
	}
	if c.stopped() {
		return ErrStopped
	}
	if _, err := c.tracker.Admit(n, lifecycle.EventSendNow, nil); err != nil {
		return fmt.Errorf("%w: %s was already submitted", ErrDuplicateID, n.ID)
	}

	c.fire(n.ID, lifecycle.EventEvaluate, "")
	c.HandleReady(ctx, n)
	return nil
}

// HandleReady is the policy pipeline shared by every entry path. In order:
// expired records are dropped, disabled categories are dropped, quiet hours
// defer to the queue, the optional daily cap drops, anything else is
// dispatched.
func (c *Coordinator) HandleReady(ctx context.Context, n notifications.Notification) {
	now := c.now()

	switch {
	case n.IsExpired(now):
		c.drop(ctx, n.ID, lifecycle.ReasonExpired)
	case !c.policy.IsCategoryEnabled(n.DeliveryType, n.Category):
		c.drop(ctx, n.ID, lifecycle.ReasonCategoryDisabled)
	case !c.policy.IsOutsideQuietHours(now):
		c.deferToQueue(ctx, n)
	case c.cfg.EnforceDailyCap && !c.policy.CanSendToday():
		c.drop(ctx, n.ID, lifecycle.ReasonPolicyBlocked)
	default:
		c.dispatch(ctx, n)
	}
}

// CancelNotification withdraws id wherever it is: the trigger store, the
// deferred queue, and the channel that delivered it. When the owning channel
// is not known every channel is asked. Channel failures are logged.
func (c *Coordinator) CancelNotification(ctx context.Context, id string) {
	pending := c.trigger.Cancel(id)
	if c.queue.Remove(id) {
		pending = true
	}
	if pending {
		c.drop(ctx, id, lifecycle.ReasonCancelled)
	}

	targets := c.channels
	if st, err := c.tracker.Status(id); err == nil && st.Channel != "" {
		if ch, ok := c.channels[st.Channel]; ok {
			targets = map[notifications.DeliveryType]notifications.Channel{st.Channel: ch}
		}
	}

	for dt, ch := range targets {
		cctx, cancel := context.WithTimeout(ctx, c.cfg.DispatchTimeout)
		if err := ch.CancelSent(cctx, id); err != nil {
			c.logger.WarnContext(ctx, "channel cancel failed",
				logger.NotificationID(id),
				logger.Channel(dt),
				logger.Error(err),
			)
		}
		cancel()
	}

	c.logger.InfoContext(ctx, "notification cancelled", logger.NotificationID(id), slog.Bool("was_pending", pending))
}

// CancelAllNotifications clears the trigger store and the deferred queue and
// asks every channel able to do so to withdraw what it already delivered.
func (c *Coordinator) CancelAllNotifications(ctx context.Context) {
	scheduled := c.trigger.CancelAll()
	deferred := c.queue.Clear()
	for _, id := range scheduled {
		c.drop(ctx, id, lifecycle.ReasonCancelled)
	}
	for _, id := range deferred {
		c.drop(ctx, id, lifecycle.ReasonCancelled)
	}

	cctx, cancel := context.WithTimeout(ctx, c.cfg.DispatchTimeout)
	defer cancel()

	var futures []*async.Future[struct{}]
	for dt, ch := range c.channels {
		bulk, ok := ch.(notifications.BulkCanceler)
		if !ok {
			continue
		}
		futures = append(futures, async.Async(cctx, dt, func(ctx context.Context, dt notifications.DeliveryType) (struct{}, error) {
			if err := bulk.CancelAllSent(ctx); err != nil {
				return struct{}{}, fmt.Errorf("%s: %w", dt, err)
			}
			return struct{}{}, nil
		}))
	}
	if _, err := async.WaitAll(futures...); err != nil {
		c.logger.WarnContext(ctx, "channel cancel-all failed", logger.Error(err))
	}

	c.logger.InfoContext(ctx, "all notifications cancelled",
		slog.Int("scheduled", len(scheduled)),
		slog.Int("deferred", len(deferred)),
	)
}

// Status reports the lifecycle of a recently seen notification.
func (c *Coordinator) Status(id string) (lifecycle.Status, error) {
	st, err := c.tracker.Status(id)
	if errors.Is(err, lifecycle.ErrUnknownNotification) {
		return lifecycle.Status{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st, err
}

// ScheduledCount returns the number of notifications waiting for their time.
func (c *Coordinator) ScheduledCount() int {
	return c.trigger.Len()
}

// DeferredCount returns the number of notifications waiting in the queue.
func (c *Coordinator) DeferredCount() int {
	return c.queue.Len()
}

// Deferred returns the queued notifications in drain order.
func (c *Coordinator) Deferred() []notifications.Notification {
	return c.queue.Snapshot()
}

// Start launches the trigger scan and the queue drain.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateRunning {
		return ErrAlreadyStarted
	}

	c.pool.Reopen()
	if err := c.trigger.Start(ctx); err != nil {
		return fmt.Errorf("start trigger store: %w", err)
	}
	if err := c.queue.Start(ctx); err != nil {
		c.trigger.Stop()
		return fmt.Errorf("start deferred queue: %w", err)
	}

	c.state = stateRunning
	c.logger.InfoContext(ctx, "engine started",
		slog.Int("channels", len(c.channels)),
		slog.Bool("daily_cap", c.cfg.EnforceDailyCap),
	)
	return nil
}

// Stop halts both periodic loops, so no scan or drain runs after it
// returns, then waits up to the dispatch timeout for in-flight sends.
// Safe to call more than once.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateRunning {
		return nil
	}
	c.state = stateStopped

	c.trigger.Stop()
	c.queue.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DispatchTimeout)
	defer cancel()
	if err := c.pool.Close(ctx); err != nil {
		c.logger.Warn("engine stopped with dispatches still in flight", slog.Int("in_flight", c.pool.InFlight()))
		return fmt.Errorf("wait for in-flight dispatches: %w", err)
	}

	c.logger.Info("engine stopped")
	return nil
}

// Run starts the engine and stops it when ctx is done; suitable for errgroup.
func (c *Coordinator) Run(ctx context.Context) func() error {
	return func() error {
		if err := c.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return c.Stop()
	}
}

func (c *Coordinator) stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateStopped
}

func (c *Coordinator) validate(n notifications.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if _, ok := c.channels[n.DeliveryType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, n.DeliveryType)
	}
	return nil
}

func (c *Coordinator) onTriggered(ctx context.Context, n notifications.Notification) {
	c.fire(n.ID, lifecycle.EventTrigger, "")
	c.fire(n.ID, lifecycle.EventEvaluate, "")
	c.HandleReady(ctx, n)
}

func (c *Coordinator) onTriggerExpired(ctx context.Context, n notifications.Notification) {
	c.fire(n.ID, lifecycle.EventTrigger, "")
	c.drop(ctx, n.ID, lifecycle.ReasonExpired)
}

func (c *Coordinator) onDrained(ctx context.Context, n notifications.Notification) {
	c.fire(n.ID, lifecycle.EventDrain, "")
	c.HandleReady(ctx, n)
}

func (c *Coordinator) onQueueExpired(ctx context.Context, n notifications.Notification) {
	c.drop(ctx, n.ID, lifecycle.ReasonExpired)
}

func (c *Coordinator) deferToQueue(ctx context.Context, n notifications.Notification) {
	if err := c.queue.Enqueue(n); err != nil {
		c.logger.WarnContext(ctx, "deferred queue full", logger.NotificationID(n.ID), logger.Error(err))
		c.drop(ctx, n.ID, lifecycle.ReasonQueueFull)
		return
	}

	c.fire(n.ID, lifecycle.EventDefer, "")
	c.observer.Deferred()
	c.logger.InfoContext(ctx, "notification deferred by quiet hours",
		logger.NotificationID(n.ID),
		slog.Int("queue_len", c.queue.Len()),
	)
}

func (c *Coordinator) dispatch(ctx context.Context, n notifications.Notification) {
	ch, ok := c.channels[n.DeliveryType]
	if !ok {
		c.logger.ErrorContext(ctx, "no channel for delivery type", logger.NotificationID(n.ID), logger.Channel(n.DeliveryType))
		c.drop(ctx, n.ID, lifecycle.ReasonChannelFailed)
		return
	}

	f := async.Submit(c.pool, ctx, func(ctx context.Context) (struct{}, error) {
		start := time.Now()
		err := ch.Send(ctx, n)
		took := time.Since(start)

		if errors.Is(err, notifications.ErrNoRecipient) {
			c.logger.WarnContext(ctx, "notification has no recipient",
				logger.NotificationID(n.ID),
				logger.Channel(n.DeliveryType),
			)
			c.drop(ctx, n.ID, lifecycle.ReasonNoRecipient)
			return struct{}{}, nil
		}
		if err != nil {
			var chErr *notifications.ChannelError
			if !errors.As(err, &chErr) {
				err = notifications.NewChannelError(n.DeliveryType, n.ID, err)
			}
			c.logger.ErrorContext(ctx, "channel send failed",
				logger.NotificationID(n.ID),
				logger.Channel(n.DeliveryType),
				logger.Duration(took),
				logger.Error(err),
			)
			c.observer.Failed(n.DeliveryType, took)
			c.drop(ctx, n.ID, lifecycle.ReasonChannelFailed)
			return struct{}{}, err
		}

		c.policy.RecordSent()
		c.fire(n.ID, lifecycle.EventDispatch, "")
		c.observer.Dispatched(n.DeliveryType, took)
		c.logger.InfoContext(ctx, "notification dispatched",
			logger.NotificationID(n.ID),
			logger.Channel(n.DeliveryType),
			logger.Duration(took),
		)
		return struct{}{}, nil
	})

	if !f.IsComplete() {
		return
	}
	switch _, err := f.Await(); {
	case errors.Is(err, async.ErrPoolClosed):
		c.logger.WarnContext(ctx, "dispatch rejected, engine stopping", logger.NotificationID(n.ID))
		c.drop(ctx, n.ID, lifecycle.ReasonChannelFailed)
	case errors.Is(err, async.ErrPoolSaturated):
		c.logger.WarnContext(ctx, "dispatch rejected, too many sends in flight",
			logger.NotificationID(n.ID),
			logger.Channel(n.DeliveryType),
			slog.Int("in_flight", c.pool.InFlight()),
		)
		c.drop(ctx, n.ID, lifecycle.ReasonBackpressure)
	}
}

func (c *Coordinator) drop(ctx context.Context, id string, reason lifecycle.DropReason) {
	c.fire(id, lifecycle.EventDrop, reason)
	c.observer.Dropped(reason)
	c.logger.InfoContext(ctx, "notification dropped", logger.NotificationID(id), logger.Reason(reason))
}

func (c *Coordinator) fire(id string, ev lifecycle.Event, reason lifecycle.DropReason) {
	if _, err := c.tracker.Fire(id, ev, reason); err != nil {
		c.logger.Debug("lifecycle transition skipped", logger.NotificationID(id), logger.Error(err))
	}
}
