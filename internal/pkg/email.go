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

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func FollowerHTML(follower, profileURL string) string {
	return fmt.Sprintf(`<p>Hello,</p><p><b>%s</b> is now following you.</p><p><a href="%s">View profile</a></p>`,
		html.EscapeString(follower), html.EscapeString(profileURL))
}

func CommentHTML(commenter, postURL string) string {
	return fmt.Sprintf(`<p>Hello,</p><p><b>%s</b> commented on your post.</p><p><a href="%s">Read the comment</a></p>`,
		html.EscapeString(commenter), html.EscapeString(postURL))
}
