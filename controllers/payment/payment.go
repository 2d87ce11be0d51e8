package paymentControllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	orderControllers "github.com/sufra-app/restaurant-api/controllers/order"
	"github.com/sufra-app/restaurant-api/models"
	"gorm.io/gorm"
)

// IntentResponse represents the provider's payment-intent response.
type IntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// getPaymentConfig picks the provider endpoint and keys, test mode if needed.
func getPaymentConfig() (apiURL, secretKey, publishableKey string, testMode bool, err error) {
	apiURL = os.Getenv("PAYMENT_API_URL")
	secretKey = os.Getenv("PAYMENT_SECRET_KEY")
	publishableKey = os.Getenv("PAYMENT_PUBLISHABLE_KEY")

	mode := os.Getenv("PAYMENT_MODE")
	if mode == "sandbox" || mode == "dev" {
		testMode = true
	}

	if apiURL == "" || secretKey == "" || publishableKey == "" {
		return "", "", "", false, fmt.Errorf("payment configuration missing")
	}
	return apiURL, secretKey, publishableKey, testMode, nil
}

// CreatePaymentIntent asks the provider for an intent covering the order
// total and returns the client secret.
func CreatePaymentIntent(order *models.Order) (string, string, error) {
	apiURL, secretKey, publishableKey, testMode, err := getPaymentConfig()
	if err != nil {
		return "", "", err
	}

	// Providers take amounts in minor units.
	amount := order.Total.Mul(decimal.NewFromInt(100)).IntPart()

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetAuthToken(secretKey).
		SetBody(map[string]interface{}{
			"amount":   amount,
			"currency": currency(),
			"test":     testMode,
			"metadata": map[string]string{
				"order_number": order.OrderNumber,
			},
			"receipt_email": order.CustomerEmail,
			"description":   "Order " + order.OrderNumber,
		}).
		Post(apiURL + "/v1/payment_intents")
	if err != nil {
		return "", "", fmt.Errorf("failed to reach payment provider: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", "", fmt.Errorf("payment provider error (%d): %s", resp.StatusCode(), string(resp.Body()))
	}

	var intent IntentResponse
	if err := json.Unmarshal(resp.Body(), &intent); err != nil {
		return "", "", fmt.Errorf("failed to parse provider response: %v", err)
	}
	if intent.Error != nil {
		return "", "", fmt.Errorf("payment provider error: %s", intent.Error.Message)
	}
	if intent.ClientSecret == "" {
		return "", "", errors.New("payment provider returned empty client secret")
	}

	return intent.ClientSecret, publishableKey, nil
}

func currency() string {
	if c := os.Getenv("PAYMENT_CURRENCY"); c != "" {
		return c
	}
	return "usd"
}

type PaymentIntentRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
}

// PaymentIntentHandler is the checkout entry point. The caller must own the
// order or hold a staff role; anonymous orders are payable by whoever holds
// the order number.
func PaymentIntentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input PaymentIntentRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").Where("order_number = ?", input.OrderNumber).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if order.UserID != nil {
			userIDVal, exists := c.Get("user_id")
			userID, _ := userIDVal.(string)
			if !exists || !orderControllers.IsOwnerOrStaff(db, &order, userID) {
				c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for this order"})
				return
			}
		}

		if order.Status != models.OrderStatusPending {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "order is not awaiting payment"})
			return
		}

		clientSecret, publishableKey, err := CreatePaymentIntent(&order)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"client_secret":   clientSecret,
			"publishable_key": publishableKey,
		})
	}
}
