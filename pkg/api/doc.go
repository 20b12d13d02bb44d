// Package api exposes the notification engine over HTTP.
//
// Routes (chi):
//
//	POST   /v1/notifications              send immediately (202)
//	POST   /v1/notifications/schedule     schedule at a time or after a delay (201)
//	DELETE /v1/notifications              cancel everything
//	DELETE /v1/notifications/{id}         cancel one notification
//	GET    /v1/notifications/{id}/status  lifecycle status
//	GET    /v1/preferences                current policy document
//	PUT    /v1/preferences                replace the policy document
//	GET    /v1/inbox/{userID}             in-app inbox, newest first
//	POST   /v1/inbox/{userID}/read        mark ids read
//	POST   /v1/inbox/{userID}/dismiss     dismiss ids
//	GET    /v1/inbox/{userID}/stream      websocket of inbox events
//	GET    /metrics, /healthz, /readyz
//
// Every JSON response uses the JSONResponse envelope. Validation problems
// answer 422 with per-field details, unknown ids 404, reused ids 409 and a
// stopped engine 503. With WithRateLimit the mutating routes answer 429
// once a client IP runs out of tokens. Responses carry X-Request-ID.
package api
