package push

import (
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Action tells the push gateway what to do with a message.
type Action string

const (
	ActionDisplay     Action = "display"
	ActionWithdraw    Action = "withdraw"
	ActionWithdrawAll Action = "withdraw_all"
)

// Device channel ids the gateway registers on clients.
const (
	ChannelIDDefault   = "default"
	ChannelIDReminder  = "reminder"
	ChannelIDImportant = "important"
)

// Message is the JSON document published to the push topic.
type Message struct {
	Action         Action            `json:"action"`
	NotificationID string            `json:"notification_id,omitempty"`
	UserID         string            `json:"user_id,omitempty"`
	ChannelID      string            `json:"channel_id,omitempty"`
	Title          string            `json:"title,omitempty"`
	Body           string            `json:"body,omitempty"`
	DeepLink       string            `json:"deep_link,omitempty"`
	Group          string            `json:"group,omitempty"`
	Category       string            `json:"category,omitempty"`
	Priority       string            `json:"priority,omitempty"`
	AutoCancel     bool              `json:"auto_cancel"`
	Data           map[string]string `json:"data,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	SentAt         time.Time         `json:"sent_at"`
}

// ChannelID picks the device channel: reminders always use the reminder
// channel, other high and critical notifications the important one.
func ChannelID(c notifications.Category, p notifications.Priority) string {
	switch {
	case c == notifications.CategoryReminder:
		return ChannelIDReminder
	case p == notifications.PriorityHigh || p == notifications.PriorityCritical:
		return ChannelIDImportant
	default:
		return ChannelIDDefault
	}
}

// AutoCancel reports whether a tap dismisses the notification.
// Only low priority notifications are dismissed on tap.
func AutoCancel(p notifications.Priority) bool {
	return p == notifications.PriorityLow
}

func displayMessage(n notifications.Notification, now time.Time) Message {
	return Message{
		Action:         ActionDisplay,
		NotificationID: n.ID,
		UserID:         n.UserID,
		ChannelID:      ChannelID(n.Category, n.Priority),
		Title:          n.Title,
		Body:           n.Body,
		DeepLink:       n.DeepLink,
		Group:          n.GroupID,
		Category:       string(n.Category),
		Priority:       n.Priority.String(),
		AutoCancel:     AutoCancel(n.Priority),
		Data:           n.ExtraData,
		ExpiresAt:      n.ExpiresAt,
		SentAt:         now,
	}
}
