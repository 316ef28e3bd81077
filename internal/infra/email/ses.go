package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the slice of the SES v2 client the sender calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers mail through AWS SES v2.
type SESSender struct {
	client SESAPI
	from   string
	logger *slog.Logger
}

type SESParams struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	From            string
}

// NewSESSender loads an AWS config for the region. Static credentials are used
// when both keys are set; otherwise the default provider chain applies.
func NewSESSender(ctx context.Context, params SESParams, logger *slog.Logger) (*SESSender, error) {
	if params.Region == "" {
		return nil, errors.New("email: ses region is required")
	}
	if params.From == "" {
		return nil, ErrSenderRequired
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(params.Region)}
	if params.AccessKeyID != "" && params.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("email: load aws config: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(awsCfg), params.From, logger), nil
}

func NewSESSenderWithClient(client SESAPI, from string, logger *slog.Logger) *SESSender {
	return &SESSender{client: client, from: from, logger: logger}
}

func (s *SESSender) Send(ctx context.Context, recipient, subject, body string) error {
	if s == nil || s.client == nil {
		return errors.New("email: ses client is not initialized")
	}
	if recipient == "" {
		return ErrRecipientRequired
	}
	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
		FromEmailAddress: aws.String(s.from),
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		if s.logger != nil {
			s.logger.Error("ses send failed", "recipient", recipient, "subject", subject, "error", err)
		}
		return fmt.Errorf("email: send ses email: %w", err)
	}
	return nil
}
