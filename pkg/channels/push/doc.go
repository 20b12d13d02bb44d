// Package push implements the push delivery channel on top of Kafka.
//
// The channel does not talk to device platforms itself. It publishes JSON
// Messages to a topic consumed by a push gateway, which owns device tokens
// and platform SDKs. Each display message carries the device channel id
// (reminder, important or default) and the auto-cancel flag derived from
// the notification's category and priority.
//
//	w, err := push.NewWriter(cfg, log)
//	if err != nil {
//		return err
//	}
//	ch := push.New(w, push.WithLogger(log))
//	defer ch.Close()
//
// CancelSent publishes a withdraw message keyed by the notification id;
// CancelAllSent publishes a single withdraw_all message.
package push
