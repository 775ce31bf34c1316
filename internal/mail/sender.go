package mail

import (
	"fmt"
	"strings"

	"tech2gether/internal/database"
)

// Sender builds the account emails and hands them to a Mailer. Delivery is
// best-effort; callers treat failures as diagnostics, never as operation
// failures.
type Sender struct {
	mailer   Mailer
	from     string
	fromName string
	frontend string
	apiBase  string
}

func NewSender(mailer Mailer, from, fromName, frontendBaseURL, apiBaseURL string) *Sender {
	return &Sender{
		mailer:   mailer,
		from:     from,
		fromName: fromName,
		frontend: strings.TrimRight(frontendBaseURL, "/"),
		apiBase:  strings.TrimRight(apiBaseURL, "/"),
	}
}

func (s *Sender) fromAddress() string {
	if s.fromName != "" {
		return fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	return s.from
}

func displayName(user *database.User) string {
	if user.PreferredName != nil && *user.PreferredName != "" {
		return *user.PreferredName
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return "there"
}

func (s *Sender) SendVerificationEmail(user *database.User, token string) error {
	verifyLink := fmt.Sprintf("%s/verify-email/%s", s.apiBase, token)
	frontendLink := fmt.Sprintf("%s/verify-email?token=%s", s.frontend, token)

	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thanks for creating a Tech2Gether account! Please confirm your email address by visiting this link (valid for 24 hours):\n\n"+
			"%s\n\n"+
			"Alternate link: %s\n\n"+
			"If you didn't create this account, you can safely ignore this email.\n",
		displayName(user), verifyLink, frontendLink)

	return s.mailer.SendMail(&Email{
		Subject: "Verify your Tech2Gether email",
		Body:    body,
		From:    s.fromAddress(),
		To:      []string{user.Email},
	})
}

func (s *Sender) SendPasswordResetEmail(user *database.User, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontend, token)

	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We received a request to reset your Tech2Gether password. Use this link within the next hour:\n\n"+
			"%s\n\n"+
			"If you didn't request a reset, you can safely ignore this email and your password will stay unchanged.\n",
		displayName(user), resetLink)

	return s.mailer.SendMail(&Email{
		Subject: "Reset your Tech2Gether password",
		Body:    body,
		From:    s.fromAddress(),
		To:      []string{user.Email},
	})
}
