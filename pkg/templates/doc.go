// Package templates renders notification subjects and bodies from a YAML
// template set keyed by category.
//
// Placeholders are {TITLE}, {MESSAGE}, {TIMESTAMP} (render time, formatted
// with TimestampLayout), {CATEGORY} (title-cased) and {key} for every entry in
// the notification's extra data. The set names a fallback category whose
// template is used for categories without their own.
//
//	set := templates.Default()
//	msg := set.Render(n)
//	// msg.Subject, msg.Body
package templates
