package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) Send(to, subject, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.From)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/html", otpBody(code))

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}

func otpBody(code string) string {
	return fmt.Sprintf(`<html>
<body style="background-color:#f6f9fc;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;">
  <div style="background-color:#ffffff;margin:0 auto;padding:20px 48px;max-width:560px;">
    <h1>Bluora Verification</h1>
    <p>Your verification code for Bluora is below. Enter this code to complete your sign-up.</p>
    <div style="background:#f2f8fa;border-radius:8px;padding:16px;text-align:center;">
      <span style="font-size:32px;letter-spacing:6px;font-weight:bold;">%s</span>
    </div>
    <p>If you didn't request this code, you can safely ignore this email.</p>
    <p style="color:#8898aa;font-size:12px;">&copy; %d Bluora. All rights reserved.</p>
  </div>
</body>
</html>`, code, time.Now().Year())
}
