// Package email implements the email delivery channel.
//
// Each notification is rendered with the template of its category
// (see package templates) and handed to an email.EmailSender, tagged with
// the category name. Title, body and extra data are HTML-escaped in the
// body; the subject uses them verbatim.
//
//	ch := email.New(sender, prefs) // prefs is a *policy.Store
//
// The destination comes from an AddressResolver. When no address is known
// Send returns notifications.ErrNoRecipient; the engine drops the
// notification without counting a delivery or a failure.
package email
