package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/sufra-app/restaurant-api/models"
)

const receiptTemplate = `
<h2>Thank you, {{.CustomerName}}!</h2>
<p>Your order <strong>{{.OrderNumber}}</strong> is {{.Status}}.</p>
<table>
{{range .Items}}<tr><td>{{.Quantity}} × {{.Name}}</td><td>{{.Price}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}<br>Tax: {{.Tax}}{{if .DeliveryFee.IsPositive}}<br>Delivery: {{.DeliveryFee}}{{end}}</p>
<p><strong>Total: {{.Total}}</strong></p>
`

// SendOrderEmail renders the receipt and delivers it over SMTP.
func SendOrderEmail(emailTo, subject string, order models.Order) error {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, order); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		os.Getenv("FROM_EMAIL"),
		subject,
		body.String(),
	)

	auth := smtp.PlainAuth(
		"",
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FROM_EMAIL_PASSWORD"),
		os.Getenv("FROM_EMAIL_SMTP"),
	)

	if err := smtp.SendMail(os.Getenv("SMTP_ADDRESS"), auth, os.Getenv("FROM_EMAIL"), []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
