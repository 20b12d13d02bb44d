// Package email sends transactional email through a provider-agnostic
// EmailSender.
//
// Two implementations are available:
//   - Postmark, for production delivery with open and link tracking
//   - DevSender, which writes every message to a local directory
//
// New picks one from Config.Provider:
//
//	sender, err := email.New(email.Config{
//		Provider:             "postmark",
//		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:          "noreply@example.com",
//		SupportEmail:         "support@example.com",
//	})
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Reminder",
//		BodyHTML: "<p>Daily standup in 10 minutes</p>",
//		Tag:      "reminder",
//	})
//
// Every implementation validates SendEmailParams before sending. Failures
// wrap ErrFailedToSendEmail; bad parameters wrap ErrInvalidParams.
package email
