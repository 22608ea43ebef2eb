package models

import "time"

type OrderItem struct {
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order — снимок корзины на момент оформления; после создания не меняется.
type Order struct {
	ID           string      `json:"id"`
	UserEmail    string      `json:"userEmail"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	City         string      `json:"city"`
	Area         string      `json:"area"`
	Address      string      `json:"address"`
	Subtotal     float64     `json:"subtotal"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type PlaceOrderRequest struct {
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	City     string      `json:"city"`
	Area     string      `json:"area"`
	Address  string      `json:"address"`
	Subtotal float64     `json:"subtotal"`
	Items    []OrderItem `json:"items"`
}
