package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

const maxBodyBytes = 1 << 20

type notificationRequest struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	DeepLink     string            `json:"deep_link"`
	DeliveryType string            `json:"delivery_type"`
	Category     string            `json:"category"`
	Priority     string            `json:"priority"`
	GroupID      string            `json:"group_id"`
	ExtraData    map[string]string `json:"extra_data"`
	ExpiresAt    *time.Time        `json:"expires_at"`
	TTL          string            `json:"ttl"`
}

type scheduleRequest struct {
	notificationRequest
	At    *time.Time `json:"at"`
	Delay string     `json:"delay"`
}

func (req notificationRequest) validate(v ValidationError) {
	if req.Title == "" && req.Body == "" {
		v.add("title", "title or body is required")
	}
	if !notifications.DeliveryType(req.DeliveryType).Valid() {
		v.add("delivery_type", fmt.Sprintf("must be one of %v", notifications.DeliveryTypes))
	}
	if !notifications.Category(req.Category).Valid() {
		v.add("category", fmt.Sprintf("must be one of %v", notifications.Categories))
	}
	if _, err := notifications.ParsePriority(req.Priority); err != nil {
		v.add("priority", "must be one of low, normal, high, critical")
	}
	if req.TTL != "" {
		if d, err := time.ParseDuration(req.TTL); err != nil || d <= 0 {
			v.add("ttl", "must be a positive duration")
		}
	}
	if req.TTL != "" && req.ExpiresAt != nil {
		v.add("expires_at", "set either ttl or expires_at")
	}
}

func (req notificationRequest) build(now time.Time) (notifications.Notification, error) {
	priority, _ := notifications.ParsePriority(req.Priority)
	opts := []notifications.Option{
		notifications.WithID(req.ID),
		notifications.WithCreatedAt(now),
		notifications.WithUserID(req.UserID),
		notifications.WithDeepLink(req.DeepLink),
		notifications.WithPriority(priority),
		notifications.WithGroupID(req.GroupID),
	}
	for k, val := range req.ExtraData {
		opts = append(opts, notifications.WithExtraData(k, val))
	}
	if req.ExpiresAt != nil {
		opts = append(opts, notifications.WithExpiresAt(*req.ExpiresAt))
	}
	if req.TTL != "" {
		ttl, _ := time.ParseDuration(req.TTL)
		opts = append(opts, notifications.WithTTL(ttl))
	}

	return notifications.New(req.Title, req.Body,
		notifications.DeliveryType(req.DeliveryType),
		notifications.Category(req.Category),
		opts...)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func (a *API) sendImmediate(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	v := ValidationError{}
	if req.validate(v); len(v) > 0 {
		respondError(w, v)
		return
	}

	n, err := req.build(a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	if err := a.engine.SendImmediate(r.Context(), n); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusAccepted, "accepted", map[string]string{"id": n.ID}, nil)
}

func (a *API) schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	now := a.now()
	v := ValidationError{}
	req.validate(v)

	var at time.Time
	switch {
	case req.At != nil && req.Delay != "":
		v.add("at", "set either at or delay")
	case req.At != nil:
		at = *req.At
	case req.Delay != "":
		d, err := time.ParseDuration(req.Delay)
		if err != nil || d <= 0 {
			v.add("delay", "must be a positive duration, send immediately instead")
		}
		at = now.Add(d)
	default:
		v.add("at", "at or delay is required")
	}
	if len(v) > 0 {
		respondError(w, v)
		return
	}

	n, err := req.build(now)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := a.engine.ScheduleNotification(r.Context(), n, at); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusCreated, "scheduled", map[string]any{"id": n.ID, "at": at}, nil)
}

func (a *API) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.engine.CancelNotification(r.Context(), id)
	a.logger.InfoContext(r.Context(), "notification cancelled via api", logger.NotificationID(id))
	respond(w, http.StatusOK, "cancelled", map[string]string{"id": id}, nil)
}

func (a *API) cancelAll(w http.ResponseWriter, r *http.Request) {
	a.engine.CancelAllNotifications(r.Context())
	respond(w, http.StatusOK, "cancelled", nil, nil)
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	st, err := a.engine.Status(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "status", st, nil)
}
