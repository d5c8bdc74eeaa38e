package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends the note as HTML with the raw briefing attached in a code block.
type Email struct {
	settings SMTPSettings
	md       goldmark.Markdown
	send     sendMailFunc
}

func NewEmail(settings SMTPSettings) (*Email, error) {
	if settings.Host == "" {
		return nil, fmt.Errorf("SMTP host not configured")
	}
	if settings.From == "" {
		return nil, fmt.Errorf("from email not configured")
	}
	if len(settings.To) == 0 {
		return nil, fmt.Errorf("no email recipients configured")
	}
	return &Email{
		settings: settings,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		send: smtp.SendMail,
	}, nil
}

func (e *Email) Name() string { return ChannelEmail }

// Markdown is the document rendered into the HTML body.
func Markdown(msg Message) string {
	var b strings.Builder
	if msg.Note != "" {
		b.WriteString(msg.Note)
		b.WriteString("\n\n")
	}
	b.WriteString("```\n")
	b.WriteString(msg.Raw)
	b.WriteString("\n```\n")
	return b.String()
}

func (e *Email) render(msg Message) ([]byte, error) {
	var body bytes.Buffer
	if err := e.md.Convert([]byte(Markdown(msg)), &body); err != nil {
		return nil, fmt.Errorf("failed to render email body: %w", err)
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("From: %s\r\n", e.settings.From))
	out.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(e.settings.To, ", ")))
	out.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	out.WriteString("MIME-Version: 1.0\r\n")
	out.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	out.WriteString("Content-Transfer-Encoding: base64\r\n")
	out.WriteString("\r\n")

	// RFC 5322 caps lines at 998 characters.
	encoded := base64.StdEncoding.EncodeToString(body.Bytes())
	for len(encoded) > 76 {
		out.WriteString(encoded[:76])
		out.WriteString("\r\n")
		encoded = encoded[76:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return []byte(out.String()), nil
}

func (e *Email) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := e.render(msg)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if e.settings.Username != "" {
		auth = smtp.PlainAuth("", e.settings.Username, e.settings.Password, e.settings.Host)
	}
	addr := fmt.Sprintf("%s:%d", e.settings.Host, e.settings.Port)
	if err := e.send(addr, auth, e.settings.From, e.settings.To, raw); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
