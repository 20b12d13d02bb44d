package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

const maxPageSize = 100

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (a *API) listInbox(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	opts, v := listOptions(r)
	if len(v) > 0 {
		respondError(w, v)
		return
	}

	list, err := a.inbox.List(r.Context(), userID, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	unread, err := a.inbox.CountUnread(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "inbox", list, map[string]any{
		"unread": unread,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

func listOptions(r *http.Request) (notifications.ListOptions, ValidationError) {
	q := r.URL.Query()
	v := ValidationError{}
	opts := notifications.ListOptions{Limit: 20, SkipDismissed: true}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxPageSize {
			v.add("limit", "must be between 1 and "+strconv.Itoa(maxPageSize))
		}
		opts.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			v.add("offset", "must be a non-negative integer")
		}
		opts.Offset = n
	}
	opts.OnlyUnread = q.Get("unread") == "true"
	if q.Get("dismissed") == "true" {
		opts.SkipDismissed = false
	}
	if s := q.Get("category"); s != "" {
		for _, name := range strings.Split(s, ",") {
			c := notifications.Category(strings.TrimSpace(name))
			if !c.Valid() {
				v.add("category", "unknown category "+string(c))
				continue
			}
			opts.Categories = append(opts.Categories, c)
		}
	}
	return opts, v
}

func (a *API) markRead(w http.ResponseWriter, r *http.Request) {
	a.updateInbox(w, r, a.inbox.MarkRead)
}

func (a *API) dismiss(w http.ResponseWriter, r *http.Request) {
	a.updateInbox(w, r, a.inbox.Dismiss)
}

func (a *API) updateInbox(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID string, ids ...string) error) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, ValidationError{"ids": {"at least one id is required"}})
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := apply(r.Context(), userID, req.IDs...); err != nil {
		respondError(w, err)
		return
	}

	unread, err := a.inbox.CountUnread(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "updated", map[string]any{"ids": req.IDs}, map[string]any{"unread": unread})
}
