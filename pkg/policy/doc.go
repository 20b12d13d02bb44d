// Package policy holds a user's delivery policy and answers the questions the
// coordinator asks before a notification may leave the engine:
//
//   - IsCategoryEnabled: false when the owning channel is globally disabled or
//     the category is switched off; categories without an entry are enabled.
//   - IsOutsideQuietHours: true when sending is allowed. With start <= end the
//     blocked window is [start, end); with start > end it wraps midnight.
//   - CanSendToday / RecordSent: per-day counters against the daily cap.
//     Counters for other dates are purged on every check.
//
// The persisted form is one JSON document per user:
//
//	{"pushEnabled":true,"inAppEnabled":true,"emailEnabled":true,
//	 "categorySettings":[{"category":"promotion","enabled":false}],
//	 "quietHoursStart":22,"quietHoursEnd":8,"maxNotificationsPerDay":5}
//
// Repositories store that document in memory, Redis, MongoDB or PostgreSQL.
// Setters clamp their input, apply it in memory and save immediately; a failed
// save is logged and returned as ErrPreferencePersistence without rolling the
// change back.
package policy
