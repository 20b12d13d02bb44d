package notifications

import (
	"errors"
	"fmt"
)

var (
	// ErrNotificationNotFound is returned when a notification is not in the inbox.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidNotification is returned when a record breaks its invariants.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrNoRecipient is returned by a channel that has nowhere to deliver.
	// The engine drops the notification instead of counting a failure.
	ErrNoRecipient = errors.New("no recipient")

	// ErrChannel is matched by every ChannelError.
	ErrChannel = errors.New("channel error")
)

// ChannelError reports a failed send on a single channel for a single notification.
type ChannelError struct {
	Channel        DeliveryType
	NotificationID string
	Err            error
}

// NewChannelError wraps err as a send failure on channel for notification id.
func NewChannelError(channel DeliveryType, id string, err error) *ChannelError {
	return &ChannelError{Channel: channel, NotificationID: id, Err: err}
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s: notification %s: %v", e.Channel, e.NotificationID, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrChannel) match any ChannelError.
func (e *ChannelError) Is(target error) bool { return target == ErrChannel }
