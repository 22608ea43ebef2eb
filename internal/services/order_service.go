package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"

	"auraleen/internal/models"
	"auraleen/internal/repositories"
)

var ErrOrderNotFound = errors.New("order not found")

// subtotalTolerance — допуск на плавающую запятую при сверке суммы.
const subtotalTolerance = 0.01

type OrderService interface {
	PlaceOrder(ownerEmail string, req *models.PlaceOrderRequest) (*models.Order, string, error)
	ListOrders(requesterEmail string) ([]*models.Order, error)
	GetOrderForViewer(requesterEmail, orderID string) (*models.Order, error)
}

type orderService struct {
	repo       repositories.OrderRepository
	notifier   *TelegramService
	adminEmail string
}

func NewOrderService(repo repositories.OrderRepository, notifier *TelegramService, adminEmail string) OrderService {
	return &orderService{
		repo:       repo,
		notifier:   notifier,
		adminEmail: NormalizeEmail(adminEmail),
	}
}

func (s *orderService) isAdmin(email string) bool {
	return s.adminEmail != "" && NormalizeEmail(email) == s.adminEmail
}

// PlaceOrder сохраняет заказ, владельца берём только из сессии.
// Возвращает заказ и короткий код для клиента.
func (s *orderService) PlaceOrder(ownerEmail string, req *models.PlaceOrderRequest) (*models.Order, string, error) {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Phone) == "" ||
		strings.TrimSpace(req.City) == "" ||
		strings.TrimSpace(req.Area) == "" ||
		strings.TrimSpace(req.Address) == "" {
		return nil, "", fmt.Errorf("%w: all delivery details are required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, "", fmt.Errorf("%w: cart items are required to place an order", ErrValidation)
	}
	if req.Subtotal <= 0 {
		return nil, "", fmt.Errorf("%w: subtotal must be a positive number", ErrValidation)
	}

	var computed float64
	for _, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Size) == "" {
			return nil, "", fmt.Errorf("%w: each cart item needs a name and a size", ErrValidation)
		}
		if item.Quantity <= 0 || item.Price < 0 {
			return nil, "", fmt.Errorf("%w: cart item quantity and price must be valid", ErrValidation)
		}
		computed += item.Price * float64(item.Quantity)
	}
	// клиент присылает сумму, сервер сверяет её с позициями
	if math.Abs(computed-req.Subtotal) > subtotalTolerance {
		return nil, "", fmt.Errorf("%w: subtotal does not match the cart items", ErrValidation)
	}

	order := &models.Order{
		ID:           uuid.New().String(),
		UserEmail:    NormalizeEmail(ownerEmail),
		CustomerName: strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		City:         strings.TrimSpace(req.City),
		Area:         strings.TrimSpace(req.Area),
		Address:      strings.TrimSpace(req.Address),
		Subtotal:     req.Subtotal,
		Items:        req.Items,
	}
	if err := s.repo.Create(order); err != nil {
		return nil, "", err
	}

	code := OrderCode(order.ID)
	log.Printf("[order][create] code=%s owner=%s items=%d subtotal=%.2f", code, order.UserEmail, len(order.Items), order.Subtotal)

	if s.notifier != nil {
		go s.notifier.NotifyNewOrder(order, code)
	}
	return order, code, nil
}

func (s *orderService) ListOrders(requesterEmail string) ([]*models.Order, error) {
	if s.isAdmin(requesterEmail) {
		return s.repo.ListAll()
	}
	return s.repo.ListByOwner(NormalizeEmail(requesterEmail))
}

// GetOrderForViewer отдаёт заказ владельцу или админу; остальным — not found.
func (s *orderService) GetOrderForViewer(requesterEmail, orderID string) (*models.Order, error) {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !s.isAdmin(requesterEmail) && order.UserEmail != NormalizeEmail(requesterEmail) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// OrderCode — короткий человеческий код заказа: WK- и последние 6 символов id.
func OrderCode(id string) string {
	tail := id
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "WK-" + strings.ToUpper(tail)
}
