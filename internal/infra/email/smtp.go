package email

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender submits plain-text mail to a relay. Auth is PLAIN when a user is
// configured.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	now      func() time.Time
	sendMail sendMailFunc
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, User: user, Password: password, From: from}
}

func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return ErrRecipientRequired
	}
	if s.From == "" {
		return ErrSenderRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	send := s.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.port()))
	if err := send(addr, auth, s.From, []string{recipient}, s.message(recipient, subject, body)); err != nil {
		return fmt.Errorf("email: smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) message(recipient, subject, body string) []byte {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return buf.Bytes()
}

func (s *SMTPSender) port() int {
	if s.Port > 0 {
		return s.Port
	}
	return 587
}
