package report

import (
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"s3-utils/core/render"
	"s3-utils/feature/snapshot"
)

// Config holds configuration for report delivery.
type Config struct {
	// SMTPHost is the mail relay to deliver through.
	SMTPHost string `mapstructure:"smtp_host" default:""`
	// SMTPPort is the relay port.
	SMTPPort int `mapstructure:"smtp_port" default:"25"`
	// UseStartTLS upgrades the connection before sending.
	UseStartTLS bool `mapstructure:"use_starttls" default:"true"`
	// From is the sender address.
	From string `mapstructure:"from" default:""`
	// To is the recipient address.
	To string `mapstructure:"to" default:""`
	// Subject is the subject line prefix; the totals are appended.
	Subject string `mapstructure:"subject" default:"S3 storage report"`
}

// Mailer delivers rendered reports over SMTP.
type Mailer struct {
	cfg Config
}

// NewMailer creates a mailer from the configuration.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Subject returns the subject line for a report: the configured prefix
// plus the file and byte deltas.
func (m *Mailer) Subject(rep *snapshot.Report) string {
	return fmt.Sprintf("%s (%s files, %s)",
		m.cfg.Subject,
		render.FormatCountDelta(rep.TotalDFiles),
		render.FormatBytesDelta(rep.TotalDBytes, render.UnitsBinary),
	)
}

// Send delivers the HTML report. The connection is upgraded with STARTTLS
// unless disabled in the configuration.
func (m *Mailer) Send(rep *snapshot.Report, html string) error {
	if m.cfg.SMTPHost == "" || m.cfg.From == "" || m.cfg.To == "" {
		return fmt.Errorf("report: smtp_host, from, and to must be configured to send email")
	}

	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp relay: %w", err)
	}
	defer client.Close()

	if m.cfg.UseStartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(m.cfg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg, err := m.message(rep, html)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

// message assembles the RFC 5322 message: a multipart/alternative envelope
// carrying the HTML body.
func (m *Mailer) message(rep *snapshot.Report, html string) (string, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return "", err
	}
	if _, err := part.Write([]byte(html)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.cfg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject(rep))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	b.WriteString("\r\n")
	b.WriteString(body.String())
	b.WriteString("\r\n")
	return b.String(), nil
}
