package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const confirmationHTML = `<h1 style="color: #4a4a4a;">Welcome to AppSquad!</h1>
<p>Dear User,</p>
<p>Thank you for signing up. To complete your registration, please verify your email address by clicking the button below:</p>
<p style="text-align: center;">
    <a href="%[1]s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
</p>
<p>If the button doesn't work, you can also copy and paste the following link into your browser:</p>
<p><a href="%[1]s">%[1]s</a></p>
<p>If you didn't create an account with us, please disregard this email.</p>
<p>Best regards,<br>AppSquad</p>`

const confirmationText = `Welcome to AppSquad!

Dear User,

Thank you for signing up. To complete your registration, please verify your email address by clicking the link below:

%[1]s

If you didn't create an account with us, please disregard this email.

Best regards,
AppSquad`

const resetHTML = `<h1 style="color: #4a4a4a;">Password Reset Request</h1>
<p>Dear User,</p>
<p>We received a request to reset your password. If you didn't make this request, you can ignore this email. Otherwise, please click the button below to reset your password:</p>
<p style="text-align: center;">
    <a href="%[1]s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
</p>
<p>If the button doesn't work, you can also copy and paste the following link into your browser:</p>
<p><a href="%[1]s">%[1]s</a></p>
<p>This link will expire in 1 hour for security reasons.</p>
<p>If you didn't request a password reset, please contact our support team immediately.</p>
<p>Best regards,<br>AppSquad</p>`

const resetText = `Password Reset Request

Dear User,

We received a request to reset your password. If you didn't make this request, you can ignore this email. Otherwise, please click the link below to reset your password:

%[1]s

This link will expire in 1 hour for security reasons.

If you didn't request a password reset, please contact our support team immediately.

Best regards,
AppSquad`

// SendGrid implements Mailer on the SendGrid v3 API.
type SendGrid struct {
	client            *sendgrid.Client
	senderAddress     string
	senderName        string
	feedbackRecipient string
	logger            *zap.Logger
}

// NewSendGrid builds the SendGrid mailer.
func NewSendGrid(apiKey, senderAddress, senderName, feedbackRecipient string, logger *zap.Logger) *SendGrid {
	return &SendGrid{
		client:            sendgrid.NewSendClient(apiKey),
		senderAddress:     senderAddress,
		senderName:        senderName,
		feedbackRecipient: feedbackRecipient,
		logger:            logger,
	}
}

func (s *SendGrid) send(ctx context.Context, message *mail.SGMailV3) error {
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Error("sendgrid returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", resp.Body),
		)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// SendConfirmation emails the verification link.
func (s *SendGrid) SendConfirmation(ctx context.Context, recipient, verificationLink string) error {
	from := mail.NewEmail(s.senderName, s.senderAddress)
	to := mail.NewEmail("You", recipient)
	message := mail.NewSingleEmail(from, "Verify Email Address", to,
		fmt.Sprintf(confirmationText, verificationLink),
		fmt.Sprintf(confirmationHTML, verificationLink),
	)
	return s.send(ctx, message)
}

// SendPasswordReset emails the reset link.
func (s *SendGrid) SendPasswordReset(ctx context.Context, recipient, resetLink string) error {
	from := mail.NewEmail(s.senderName, s.senderAddress)
	to := mail.NewEmail("You", recipient)
	message := mail.NewSingleEmail(from, "Password Reset Request", to,
		fmt.Sprintf(resetText, resetLink),
		fmt.Sprintf(resetHTML, resetLink),
	)
	return s.send(ctx, message)
}

// SendFeedback forwards a user's feedback to the configured recipient.
func (s *SendGrid) SendFeedback(ctx context.Context, userEmail string, rating int, feedback string) error {
	from := mail.NewEmail("AppSquad Feedback", s.senderAddress)
	to := mail.NewEmail("Feedback Recipient", s.feedbackRecipient)
	subject := fmt.Sprintf("New Feedback (Rating: %d/5)", rating)
	body := fmt.Sprintf("User Email: %s\n\nRating: %d/5\n\nFeedback:\n%s", userEmail, rating, feedback)
	message := mail.NewSingleEmail(from, subject, to, body, "<pre>"+body+"</pre>")
	return s.send(ctx, message)
}
