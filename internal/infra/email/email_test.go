package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastalstay/internal/infra/config"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSenderWithClient(client, "stay@coastalstay.lk", nil)

	require.NoError(t, sender.Send(context.Background(), "owner@coastalstay.lk", "New inquiry", "Hello"))
	require.NotNil(t, client.input)
	assert.Equal(t, []string{"owner@coastalstay.lk"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "stay@coastalstay.lk", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, "New inquiry", aws.ToString(client.input.Content.Simple.Subject.Data))
	assert.Equal(t, "Hello", aws.ToString(client.input.Content.Simple.Body.Text.Data))

	assert.ErrorIs(t, sender.Send(context.Background(), "", "s", "b"), ErrRecipientRequired)

	client.err = errors.New("throttled")
	assert.ErrorContains(t, sender.Send(context.Background(), "owner@coastalstay.lk", "s", "b"), "throttled")
}

func TestSMTPSender_Send(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	sender := NewSMTPSender("mail.test", 0, "bot", "secret", "stay@coastalstay.lk")
	sender.now = func() time.Time { return time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC) }
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	require.NoError(t, sender.Send(context.Background(), "owner@coastalstay.lk", "Booking for 2030-07-01", "line one\nline two"))
	assert.Equal(t, "mail.test:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"owner@coastalstay.lk"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: stay@coastalstay.lk\r\nTo: owner@coastalstay.lk\r\n"))
	assert.Contains(t, gotMsg, "Subject: Booking for 2030-07-01\r\n")
	assert.Contains(t, gotMsg, "Date: Sat, 01 Jun 2030 08:00:00 +0000\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nline one\r\nline two"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, "owner@coastalstay.lk", "s", "b"), context.Canceled)

	sender.From = ""
	assert.ErrorIs(t, sender.Send(context.Background(), "owner@coastalstay.lk", "s", "b"), ErrSenderRequired)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	sender, err := New(ctx, config.Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, sender)
	assert.NoError(t, sender.Send(ctx, "owner@coastalstay.lk", "s", "b"))

	sender, err = New(ctx, config.Config{EmailTransport: config.EmailSMTP, SMTPHost: "mail.test", EmailFrom: "a@b.co"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)

	_, err = New(ctx, config.Config{EmailTransport: config.EmailSMTP}, nil)
	assert.Error(t, err)
	_, err = New(ctx, config.Config{EmailTransport: config.EmailSES, EmailFrom: "a@b.co"}, nil)
	assert.Error(t, err)
	_, err = New(ctx, config.Config{EmailTransport: "pigeon"}, nil)
	assert.Error(t, err)
}
