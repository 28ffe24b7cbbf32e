package service

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier sends outbound mail on a fire-and-forget basis. A share or
// password reset must never fail or stall because SMTP is down, so sends
// happen on their own goroutine and failures only get logged.
type Notifier struct {
	enabled bool
	host    string
	port    int
	from    string
	pass    string
}

func NewNotifier() *Notifier {
	return &Notifier{
		enabled: viper.GetBool("mail.enabled"),
		host:    viper.GetString("mail.host"),
		port:    viper.GetInt("mail.port"),
		from:    viper.GetString("mail.sender_address"),
		pass:    viper.GetString("mail.password"),
	}
}

// Notify queues one mail. Returns immediately.
func (n *Notifier) Notify(to, subject, htmlBody string) {
	if !n.enabled || to == "" || to == n.from {
		return
	}

	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", n.from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", htmlBody)

		d := gomail.NewDialer(n.host, n.port, n.from, n.pass)

		if err := d.DialAndSend(m); err != nil {
			zap.L().Warn("Failed to send notification mail",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}
