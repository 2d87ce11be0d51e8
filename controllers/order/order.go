package orderControllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartControllers "github.com/sufra-app/restaurant-api/controllers/cart"
	"github.com/sufra-app/restaurant-api/middleware"
	"github.com/sufra-app/restaurant-api/models"
	"github.com/sufra-app/restaurant-api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultListLimit = 100

// -------- Request Structs --------

type OrderItemInput struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	CustomerName    string           `json:"customer_name" binding:"required"`
	CustomerPhone   string           `json:"customer_phone" binding:"required"`
	CustomerEmail   string           `json:"customer_email"`
	OrderType       string           `json:"order_type" binding:"required"` // pickup | delivery
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress datatypes.JSON   `json:"delivery_address"`
	Notes           string           `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateOrderItemsRequest struct {
	Items []models.OrderItem `json:"items" binding:"required,min=1,dive"`
}

// -------- Helpers --------

func taxRate() decimal.Decimal {
	if rate, err := decimal.NewFromString(os.Getenv("TAX_RATE")); err == nil {
		return rate
	}
	return decimal.RequireFromString("0.05")
}

func deliveryFee() decimal.Decimal {
	if fee, err := decimal.NewFromString(os.Getenv("DELIVERY_FEE")); err == nil {
		return fee
	}
	return decimal.RequireFromString("5.00")
}

// statusFilter parses ?status=pending,preparing into a status list.
func statusFilter(raw string) ([]models.OrderStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var statuses []models.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		s, err := models.ParseOrderStatus(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// -------- Core Logic --------

// PlaceOrder builds an order from the requested items, prices re-resolved
// from the menu, and persists it.
func PlaceOrder(db *gorm.DB, req PlaceOrderRequest, userID *string) (*models.Order, error) {
	orderType, err := models.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if orderType == models.OrderTypeDelivery && len(req.DeliveryAddress) == 0 {
		return nil, errors.New("delivery requires an address; pickup is always available")
	}

	var items []models.OrderItem
	for _, input := range req.Items {
		name, price, _, err := cartControllers.ResolveItem(db, input.ItemID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ItemID:   input.ItemID,
			Name:     name,
			Price:    price,
			Quantity: input.Quantity,
		})
	}

	order := models.Order{
		ID:              uuid.NewString(),
		OrderNumber:     models.NewOrderNumber(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		OrderType:       orderType,
		Status:          models.OrderStatusPending,
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		UserID:          userID,
		CreatedAt:       time.Now(),
	}
	order.RecomputeTotals(taxRate(), deliveryFee())

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		// A signed-in customer's server cart is consumed by checkout.
		if userID != nil {
			var cart models.Cart
			if err := tx.Where("owner_id = ?", *userID).First(&cart).Error; err == nil {
				if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartLine{}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// Place order (customer or guest)
func PlaceOrderHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var userID *string
		if v, exists := c.Get("user_id"); exists {
			if id, ok := v.(string); ok && !strings.HasPrefix(id, "guest_") {
				userID = &id
			}
		}

		order, err := PlaceOrder(db, req, userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hub.Broadcast(Event{Type: EventInsert, New: order})
		c.JSON(http.StatusCreated, order)
	}
}

// GetOrdersHandler lists orders for the kitchen/admin boards.
// Query params: ?status=pending,preparing&limit=50, ordered by creation
// time ascending.
func GetOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses, err := statusFilter(c.Query("status"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		limit := defaultListLimit
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		query := db.Preload("Items").Order("created_at ASC").Limit(limit)
		if len(statuses) > 0 {
			query = query.Where("status IN ?", statuses)
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetUserOrdersHandler returns the caller's own orders.
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at ASC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// TrackOrderHandler resolves an order by its human-readable number, for the
// customer-facing tracking page.
func TrackOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		number := c.Param("orderNumber")
		if number == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderNumber is required"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").Where("order_number = ?", number).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatusHandler moves an order through the kitchen flow. Illegal
// jumps are rejected with 422.
func UpdateOrderStatusHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !order.Status.CanTransitionTo(newStatus) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "illegal status transition: " + string(order.Status) + " -> " + string(newStatus),
			})
			return
		}

		old := order
		order.Status = newStatus
		if err := db.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", newStatus).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		order.UpdatedAt = time.Now()

		hub.Broadcast(Event{Type: EventUpdate, New: &order, Old: &old})

		if newStatus == models.OrderStatusReady {
			go utils.NotifyOrderReady(order)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
	}
}

// UpdateOrderItemsHandler replaces the item list (kitchen marks lines
// prepared, admin fixes mistakes). Totals are recomputed; terminal orders
// are immutable.
func UpdateOrderItemsHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req UpdateOrderItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if order.Status.IsTerminal() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot edit items of a " + string(order.Status) + " order"})
			return
		}

		old := order

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range req.Items {
				req.Items[i].ID = 0
				req.Items[i].OrderID = orderID
			}
			if err := tx.Create(&req.Items).Error; err != nil {
				return err
			}

			order.Items = req.Items
			order.RecomputeTotals(taxRate(), deliveryFee())
			return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
				"subtotal":     order.Subtotal,
				"tax":          order.Tax,
				"delivery_fee": order.DeliveryFee,
				"total":        order.Total,
			}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order items"})
			return
		}
		order.UpdatedAt = time.Now()

		hub.Broadcast(Event{Type: EventUpdate, New: &order, Old: &old})
		c.JSON(http.StatusOK, gin.H{"message": "Order items updated successfully", "order": order})
	}
}

// Delete order (admin)
func DeleteOrderHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		var order models.Order
		if err := db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", orderID).
				Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", orderID).Delete(&models.Order{}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
			return
		}

		hub.Broadcast(Event{Type: EventDelete, Old: &order})
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

// IsOwnerOrStaff reports whether the caller may act on the order.
func IsOwnerOrStaff(db *gorm.DB, order *models.Order, userID string) bool {
	if order.UserID != nil && *order.UserID == userID {
		return true
	}
	return middleware.HasRole(db, userID, models.RoleKitchen)
}
