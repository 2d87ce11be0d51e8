package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/sufra-app/restaurant-api/models"
)

// SendSMS delivers a text through the configured SMS gateway. Misconfigured
// gateways degrade to a logged no-op.
func SendSMS(phone, message string) error {
	apiURL := os.Getenv("SMS_API_URL")
	apiKey := os.Getenv("SMS_API_KEY")
	if apiURL == "" || apiKey == "" {
		log.Println("SMS gateway not configured, skipping")
		return nil
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetBody(map[string]string{
			"to":   phone,
			"from": os.Getenv("SMS_SENDER_ID"),
			"text": message,
		}).
		Post(apiURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("sms gateway error (%d): %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// NotifyOrderReady tells the customer their order is ready. Failures are
// logged, never surfaced to the kitchen flow.
func NotifyOrderReady(order models.Order) {
	msg := fmt.Sprintf("Your order %s is ready for %s!", order.OrderNumber, order.OrderType)
	if err := SendSMS(order.CustomerPhone, msg); err != nil {
		log.Printf("failed to send ready SMS for %s: %v", order.OrderNumber, err)
	}
	if order.CustomerEmail != "" {
		if err := SendOrderEmail(order.CustomerEmail, "Your order is ready", order); err != nil {
			log.Printf("failed to send ready email for %s: %v", order.OrderNumber, err)
		}
	}
}

// NotifyOrderPaid sends the payment receipt.
func NotifyOrderPaid(order models.Order) {
	if order.CustomerEmail != "" {
		if err := SendOrderEmail(order.CustomerEmail, "Receipt for order "+order.OrderNumber, order); err != nil {
			log.Printf("failed to send receipt for %s: %v", order.OrderNumber, err)
		}
	}
	msg := fmt.Sprintf("Payment received for order %s. We'll text you when it's ready.", order.OrderNumber)
	if err := SendSMS(order.CustomerPhone, msg); err != nil {
		log.Printf("failed to send paid SMS for %s: %v", order.OrderNumber, err)
	}
}
