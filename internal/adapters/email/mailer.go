package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"virtualevents/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const (
	ProviderSES  = "ses"
	ProviderNoop = "noop"

	sendTimeout = 15 * time.Second
	charset     = "UTF-8"
)

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider        string
	FromAddress     string
	FromName        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// sesAPI is the part of the SES client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewMailer creates a mailer from config. Provider "ses" sends through AWS SES;
// anything else only logs the message.
func NewMailer(config MailerConfig, logger *slog.Logger) domain.Mailer {
	if config.Provider != ProviderSES {
		if config.Provider != ProviderNoop {
			logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		}
		return &noopMailer{logger: logger}
	}

	awsCfg := aws.Config{Region: config.Region}
	// Without static keys the SDK's default chain is not loaded; SES calls will fail loudly.
	if config.AccessKeyID != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		)
	}
	return newSESMailer(ses.NewFromConfig(awsCfg), config, logger)
}

func newSESMailer(client sesAPI, config MailerConfig, logger *slog.Logger) *sesMailer {
	source := config.FromAddress
	if config.FromName != "" {
		source = fmt.Sprintf("%s <%s>", config.FromName, config.FromAddress)
	}
	return &sesMailer{client: client, source: source, logger: logger}
}

type sesMailer struct {
	client sesAPI
	source string
	logger *slog.Logger
}

func (s *sesMailer) Send(to, subject, html, text string) error {
	body := &types.Body{}
	if html != "" {
		body.Html = content(html)
	}
	if text != "" {
		body.Text = content(text)
	}
	input := &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message:     &types.Message{Subject: content(subject), Body: body},
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.Info("email sent via SES", "to", to, "message_id", aws.ToString(result.MessageId))
	return nil
}

func content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String(charset)}
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(to, subject, html, text string) error {
	n.logger.Info("email not sent (noop mailer)", "to", to, "subject", subject)
	return nil
}
