package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"auraleen/internal/models"
	"auraleen/internal/pdf"
	"auraleen/internal/services"
)

type OrderHandler struct {
	orders services.OrderService
	pdfGen pdf.Generator
}

func NewOrderHandler(orders services.OrderService, pdfGen pdf.Generator) *OrderHandler {
	return &OrderHandler{orders: orders, pdfGen: pdfGen}
}

// @Summary      Place a COD order
// @Description  Persists the cart snapshot; the owner always comes from the session
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        order  body      models.PlaceOrderRequest  true  "Order data"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	_, email, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You need to be signed in to place an order."})
		return
	}

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, code, err := h.orders.PlaceOrder(email, &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[order][create] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place the order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      code,
		"message": "Order created successfully. Our team will contact you to confirm.",
	})
}

// @Summary      List orders
// @Description  Admin sees every order; everyone else sees only their own, newest first
// @Tags         Orders
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	_, email, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := h.orders.ListOrders(email)
	if err != nil {
		log.Printf("[order][list] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// @Summary      Download a COD invoice
// @Tags         Orders
// @Produce      application/pdf
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	_, email, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orders.GetOrderForViewer(email, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("[order][invoice] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load the order"})
		return
	}

	items := make([]pdf.InvoiceItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, pdf.InvoiceItem{
			Name:     item.Name,
			Size:     item.Size,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	path, err := h.pdfGen.GenerateInvoice(pdf.InvoiceData{
		OrderCode:    services.OrderCode(order.ID),
		CustomerName: order.CustomerName,
		Phone:        order.Phone,
		City:         order.City,
		Area:         order.Area,
		Address:      order.Address,
		Items:        items,
		Subtotal:     order.Subtotal,
		CreatedAt:    order.CreatedAt,
	})
	if err != nil {
		log.Printf("[order][invoice] pdf error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate the invoice"})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.File(path)
}
