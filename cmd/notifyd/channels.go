package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	emailchannel "github.com/dmitrymomot/notifykit/pkg/channels/email"
	"github.com/dmitrymomot/notifykit/pkg/channels/inapp"
	"github.com/dmitrymomot/notifykit/pkg/channels/push"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/coordinator"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/policy"
	"github.com/dmitrymomot/notifykit/pkg/templates"
)

// channelSet is the adapters enabled by NOTIFY_CHANNELS.
type channelSet struct {
	options []coordinator.Option
	inbox   *inapp.Channel
	closers []func() error
}

func (s *channelSet) close(ctx context.Context, log *slog.Logger) {
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			log.ErrorContext(ctx, "failed to close channel", logger.Error(err))
		}
	}
}

func buildChannels(cfg appConfig, prefs *policy.Store, log *slog.Logger) (*channelSet, error) {
	set := &channelSet{}

	for _, name := range cfg.Channels {
		switch notifications.DeliveryType(name) {
		case notifications.DeliveryInApp:
			ch := inapp.New(notifications.NewMemoryStorage(),
				inapp.WithDefaultUserID(cfg.InboxUserID),
				inapp.WithHub(inapp.NewHub(cfg.InboxBuffer)),
				inapp.WithLogger(log))
			set.inbox = ch
			set.options = append(set.options, coordinator.WithChannel(notifications.DeliveryInApp, ch))
			set.closers = append(set.closers, ch.Close)

		case notifications.DeliveryPush:
			var pushCfg push.Config
			if err := config.Load(&pushCfg); err != nil {
				return nil, err
			}
			w, err := push.NewWriter(pushCfg, log)
			if err != nil {
				return nil, err
			}
			ch := push.New(w, push.WithLogger(log))
			set.options = append(set.options, coordinator.WithChannel(notifications.DeliveryPush, ch))
			set.closers = append(set.closers, ch.Close)

		case notifications.DeliveryEmail:
			var emailCfg email.Config
			if err := config.Load(&emailCfg); err != nil {
				return nil, err
			}
			sender, err := email.New(emailCfg)
			if err != nil {
				return nil, err
			}
			tmpl, err := loadTemplates(cfg.TemplatesFile)
			if err != nil {
				return nil, err
			}
			ch := emailchannel.New(sender, prefs,
				emailchannel.WithTemplates(tmpl),
				emailchannel.WithLogger(log))
			set.options = append(set.options, coordinator.WithChannel(notifications.DeliveryEmail, ch))

		default:
			return nil, fmt.Errorf("unknown channel %q in NOTIFY_CHANNELS", name)
		}
	}

	return set, nil
}

func loadTemplates(path string) (*templates.Set, error) {
	if path == "" {
		return templates.Default(), nil
	}
	return templates.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}
