package paymentControllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	orderControllers "github.com/sufra-app/restaurant-api/controllers/order"
	"github.com/sufra-app/restaurant-api/models"
	"github.com/sufra-app/restaurant-api/utils"
	"gorm.io/gorm"
)

// WebhookRequest is the provider's event payload. Signature verification
// happens in middleware before this handler runs.
type WebhookRequest struct {
	Event string `json:"event"` // e.g. "payment.succeeded", "payment.failed"
	Data  struct {
		IntentID string `json:"intent_id"`
		Metadata struct {
			OrderNumber string `json:"order_number"`
		} `json:"metadata"`
	} `json:"data"`
}

// PaymentWebhookHandler flips the order to paid on a successful charge,
// broadcasts the change and sends the receipt.
func PaymentWebhookHandler(db *gorm.DB, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse webhook payload"})
			return
		}

		if req.Event != "payment.succeeded" {
			c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
			return
		}

		orderNumber := req.Data.Metadata.OrderNumber
		if orderNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_number metadata"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Providers redeliver webhooks; a second delivery is a no-op.
		if order.Status == models.OrderStatusPaid {
			c.JSON(http.StatusOK, gin.H{"message": "order already paid"})
			return
		}
		if !order.Status.CanTransitionTo(models.OrderStatusPaid) {
			log.Printf("payment webhook for %s arrived in status %s, ignoring", orderNumber, order.Status)
			c.JSON(http.StatusOK, gin.H{"message": "order not payable in its current status"})
			return
		}

		old := order
		order.Status = models.OrderStatusPaid
		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", models.OrderStatusPaid).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark order paid"})
			return
		}
		order.UpdatedAt = time.Now()

		hub.Broadcast(orderControllers.Event{Type: orderControllers.EventUpdate, New: &order, Old: &old})
		go utils.NotifyOrderPaid(order)

		c.JSON(http.StatusOK, gin.H{"message": "order marked paid"})
	}
}
