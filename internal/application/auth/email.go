package auth

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/school-directory/internal/infrastructure/smtp"
)

const otpSubject = "Your Login OTP Code - School Directory"

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Login OTP</title></head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="text-align: center;">Login Verification</h1>
  <p>Hello,</p>
  <p>You requested to log in to the School Directory. Use the following code to complete your login:</p>
  <div style="background-color: #007bff; color: #fff; font-size: 32px; font-weight: bold; text-align: center; padding: 20px; border-radius: 8px; letter-spacing: 5px;">{{.Code}}</div>
  <ul>
    <li>This code will expire in {{.Minutes}} minutes</li>
    <li>Do not share this code with anyone</li>
    <li>If you didn't request this login, please ignore this email</li>
  </ul>
  <p><em>This is an automated message. Please do not reply to this email.</em></p>
</body>
</html>
`))

func otpMessage(to, code string, ttl time.Duration) (smtp.Message, error) {
	minutes := int(ttl.Minutes())
	var buf bytes.Buffer
	data := struct {
		Code    string
		Minutes int
	}{code, minutes}
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return smtp.Message{}, fmt.Errorf("render otp email: %w", err)
	}
	return smtp.Message{
		To:       to,
		Subject:  otpSubject,
		TextBody: fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, minutes),
		HTMLBody: buf.String(),
	}, nil
}
