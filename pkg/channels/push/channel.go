package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Writer is the subset of *kafka.Writer the channel needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a kafka writer for cfg. Messages with the same key land on
// the same partition, so a withdraw is never consumed before its display.
func NewWriter(cfg Config, log *slog.Logger) (*kafka.Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrEmptyTopic
	}
	if log == nil {
		log = slog.Default()
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  max(cfg.MaxAttempts, 1),
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Compression:  kafka.Snappy,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Debug(fmt.Sprintf(msg, args...), logger.Component("kafka"))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf(msg, args...), logger.Component("kafka"))
		}),
	}, nil
}

// Channel publishes push notifications to the gateway topic.
type Channel struct {
	writer Writer
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock sets the time source used for sent_at.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a push channel writing to w.
func New(w Writer, opts ...Option) *Channel {
	c := &Channel{
		writer: w,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("push"))
	return c
}

// Send publishes a display message.
func (c *Channel) Send(ctx context.Context, n notifications.Notification) error {
	msg := displayMessage(n, c.now())
	if err := c.publish(ctx, n.ID, msg); err != nil {
		return notifications.NewChannelError(notifications.DeliveryPush, n.ID, err)
	}

	c.logger.DebugContext(ctx, "push notification published",
		logger.NotificationID(n.ID),
		slog.String("channel_id", msg.ChannelID),
		slog.Bool("auto_cancel", msg.AutoCancel))
	return nil
}

// CancelSent asks the gateway to withdraw a scheduled or displayed notification.
func (c *Channel) CancelSent(ctx context.Context, id string) error {
	return c.publish(ctx, id, Message{
		Action:         ActionWithdraw,
		NotificationID: id,
		SentAt:         c.now(),
	})
}

// CancelAllSent asks the gateway to withdraw every notification it shows.
func (c *Channel) CancelAllSent(ctx context.Context) error {
	return c.publish(ctx, "", Message{
		Action: ActionWithdrawAll,
		SentAt: c.now(),
	})
}

// Close flushes and closes the writer.
func (c *Channel) Close() error {
	return c.writer.Close()
}

func (c *Channel) publish(ctx context.Context, key string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeEvent, err)
	}

	km := kafka.Message{
		Value: data,
		Time:  msg.SentAt,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(msg.Action)},
		},
	}
	if key != "" {
		km.Key = []byte(key)
	}

	if err := c.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return nil
}
