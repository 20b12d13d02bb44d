package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/templates"
)

// AddressResolver returns the destination address, if one is known.
// *policy.Store satisfies it with the persisted profile email.
type AddressResolver interface {
	EmailAddress() (string, bool)
}

// AddressFunc adapts a function to AddressResolver.
type AddressFunc func() (string, bool)

func (f AddressFunc) EmailAddress() (string, bool) { return f() }

// Channel renders category templates and sends them through an EmailSender.
type Channel struct {
	sender    email.EmailSender
	addresses AddressResolver
	templates *templates.Set
	logger    *slog.Logger
}

// Option configures a Channel.
type Option func(*Channel)

// WithTemplates replaces the built-in template set.
func WithTemplates(set *templates.Set) Option {
	return func(c *Channel) {
		if set != nil {
			c.templates = set
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

// New creates an email channel.
func New(sender email.EmailSender, addresses AddressResolver, opts ...Option) *Channel {
	c := &Channel{
		sender:    sender,
		addresses: addresses,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.templates == nil {
		c.templates = templates.Default()
	}
	c.logger = c.logger.With(logger.Component("email"))
	return c
}

// Send renders and sends n. Without a known address it returns
// notifications.ErrNoRecipient and sends nothing.
func (c *Channel) Send(ctx context.Context, n notifications.Notification) error {
	to, ok := c.addresses.EmailAddress()
	if !ok || to == "" {
		return fmt.Errorf("%w: no email address configured", notifications.ErrNoRecipient)
	}

	params := email.SendEmailParams{
		SendTo:   to,
		Subject:  c.templates.Render(n).Subject,
		BodyHTML: c.templates.Render(escaped(n)).Body,
		Tag:      string(n.Category),
	}

	if err := c.sender.SendEmail(ctx, params); err != nil {
		return notifications.NewChannelError(notifications.DeliveryEmail, n.ID, err)
	}

	c.logger.DebugContext(ctx, "email notification sent",
		logger.NotificationID(n.ID),
		logger.Category(n.Category))
	return nil
}

// CancelSent is a no-op: sent mail cannot be withdrawn.
func (c *Channel) CancelSent(context.Context, string) error { return nil }

func escaped(n notifications.Notification) notifications.Notification {
	n.Title = html.EscapeString(n.Title)
	n.Body = html.EscapeString(n.Body)
	if len(n.ExtraData) > 0 {
		data := maps.Clone(n.ExtraData)
		for k, v := range data {
			data[k] = html.EscapeString(v)
		}
		n.ExtraData = data
	}
	return n
}
