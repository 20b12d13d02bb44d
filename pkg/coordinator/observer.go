package coordinator

import (
	"time"

	"github.com/dmitrymomot/notifykit/pkg/lifecycle"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Policy is the read side of the user preferences the engine evaluates.
// *policy.Store implements it.
type Policy interface {
	IsCategoryEnabled(dt notifications.DeliveryType, c notifications.Category) bool
	IsOutsideQuietHours(now time.Time) bool
	CanSendToday() bool
	RecordSent()
}

// Observer receives delivery outcomes, typically for metrics.
type Observer interface {
	Dispatched(channel notifications.DeliveryType, took time.Duration)
	Failed(channel notifications.DeliveryType, took time.Duration)
	Dropped(reason lifecycle.DropReason)
	Deferred()
}

type noopObserver struct{}

func (noopObserver) Dispatched(notifications.DeliveryType, time.Duration) {}
func (noopObserver) Failed(notifications.DeliveryType, time.Duration)     {}
func (noopObserver) Dropped(lifecycle.DropReason)                         {}
func (noopObserver) Deferred()                                            {}
