package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

type postmarkClient struct {
	client postmarkAPI
	config Config
}

// NewPostmarkClient creates a Postmark-backed email sender.
// Both tokens are required so a misconfigured production service fails at
// startup rather than on the first notification.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	if err := validatePostmarkConfig(cfg); err != nil {
		return nil, err
	}
	return newPostmarkClient(postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken), cfg), nil
}

func newPostmarkClient(api postmarkAPI, cfg Config) *postmarkClient {
	return &postmarkClient{client: api, config: cfg}
}

func validatePostmarkConfig(cfg Config) error {
	switch {
	case cfg.PostmarkServerToken == "":
		return fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	case cfg.PostmarkAccountToken == "":
		return fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	case !validAddress(cfg.SenderEmail):
		return fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	case !validAddress(cfg.SupportEmail):
		return fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}
	return nil
}

// SendEmail sends through Postmark's transactional API with open and HTML
// link tracking. Replies go to the support address.
func (c *postmarkClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       c.config.SenderEmail,
		ReplyTo:    c.config.SupportEmail,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
