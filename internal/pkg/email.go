package pkg

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.From != "" }

// SMTPMailer 按配置发送 HTML 邮件
type SMTPMailer struct {
	Config SMTPConfig
}

func (m SMTPMailer) Send(to []string, subject, htmlBody string) error {
	return SendEmail(m.Config, to, subject, htmlBody)
}

// SendEmail 同一封邮件发送给多个收件人
func SendEmail(cfg SMTPConfig, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func TaskEmailHTML(communityName, roomNumber, description string) string {
	where := html.EscapeString(communityName)
	if roomNumber != "" {
		where = fmt.Sprintf("%s, room %s", where, html.EscapeString(roomNumber))
	}
	return fmt.Sprintf(`<p>A new help request was raised at <b>%s</b>:</p><p style="font-size:16px;">%s</p><p>Please respond as soon as possible.</p>`,
		where, html.EscapeString(description))
}
