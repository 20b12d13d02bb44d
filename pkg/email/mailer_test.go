package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
)

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Reminder: Standup",
		BodyHTML: "<p>Daily sync</p>",
		Tag:      "reminder",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
		errMsg string
	}{
		{name: "valid", mutate: func(*email.SendEmailParams) {}},
		{name: "missing recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = " " }, errMsg: "recipient is required"},
		{name: "display name recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "User <user@example.com>" }, errMsg: "not a valid email address"},
		{name: "malformed recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "user@" }, errMsg: "not a valid email address"},
		{name: "missing subject", mutate: func(p *email.SendEmailParams) { p.Subject = "" }, errMsg: "subject is required"},
		{name: "missing body", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "\n" }, errMsg: "body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validParams()
			tt.mutate(&p)

			err := p.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	sender, err := email.New(email.Config{Provider: "dev", DevDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &email.DevSender{}, sender)

	_, err = email.New(email.Config{Provider: "postmark"})
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	sender, err = email.New(email.Config{
		Provider:             "postmark",
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, sender)

	_, err = email.New(email.Config{Provider: "smtp"})
	require.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestNewPostmarkClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	base := email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	}

	tests := []struct {
		name   string
		mutate func(*email.Config)
		errMsg string
	}{
		{"server token", func(c *email.Config) { c.PostmarkServerToken = "" }, "PostmarkServerToken is required"},
		{"account token", func(c *email.Config) { c.PostmarkAccountToken = "" }, "PostmarkAccountToken is required"},
		{"sender", func(c *email.Config) { c.SenderEmail = "nope" }, "SenderEmail"},
		{"support", func(c *email.Config) { c.SupportEmail = "" }, "SupportEmail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)

			client, err := email.NewPostmarkClient(cfg)
			require.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Nil(t, client)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("writes body and metadata", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested")
		sender := email.NewDevSender(dir)

		require.NoError(t, sender.SendEmail(context.Background(), validParams()))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile, jsonFile string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlFile = e.Name()
			case ".json":
				jsonFile = e.Name()
			}
		}
		assert.True(t, strings.HasSuffix(htmlFile, "_reminder.html"), htmlFile)

		body, err := os.ReadFile(filepath.Join(dir, htmlFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>Daily sync</p>", string(body))

		raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
		require.NoError(t, err)
		var meta map[string]string
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "user@example.com", meta["send_to"])
		assert.Equal(t, "Reminder: Standup", meta["subject"])
		assert.Equal(t, "reminder", meta["tag"])
	})

	t.Run("subject names the file without tag", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		p := validParams()
		p.Tag = ""
		p.Subject = "Hello World! #1"

		require.NoError(t, email.NewDevSender(dir).SendEmail(context.Background(), p))

		matches, err := filepath.Glob(filepath.Join(dir, "*_hello_world_1.html"))
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		p := validParams()
		p.SendTo = ""

		err := email.NewDevSender(dir).SendEmail(context.Background(), p)
		require.ErrorIs(t, err, email.ErrInvalidParams)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := email.NewDevSender(t.TempDir()).SendEmail(ctx, validParams())
		require.ErrorIs(t, err, email.ErrFailedToSendEmail)
		require.ErrorIs(t, err, context.Canceled)
	})
}
