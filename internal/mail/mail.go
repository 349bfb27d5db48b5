package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTP sends mail through a gomail dialer. Each message opens its own
// connection; order mail volume does not justify a pooled sender.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(cfg Config) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTP) Send(ctx context.Context, to, subject, html string) error {
	const op = "mail.SMTP.Send"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Discard is used when SMTP is not configured.
type Discard struct{}

func (Discard) Send(context.Context, string, string, string) error { return nil }

type OrderMail struct {
	Account string
	OrderID string
	Status  string
	Total   string
	Seats   []string
	Link    string
}

var orderTmpl = template.Must(template.New("order").Parse(`<!doctype html>
<html><body>
<p>Hi {{.Account}},</p>
<p>Your order <b>{{.OrderID}}</b> is now <b>{{.Status}}</b>.</p>
<p>Total: {{.Total}}</p>
{{if .Seats}}<p>Seats:</p><ul>{{range .Seats}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Link}}<p><a href="{{.Link}}">View order</a></p>{{end}}
</body></html>`))

func RenderOrder(data OrderMail) (string, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail.RenderOrder:%w", err)
	}
	return buf.String(), nil
}
