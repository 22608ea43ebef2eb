package repositories

import (
	"database/sql"
	"fmt"

	"auraleen/internal/models"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByOwner(email string) ([]*models.Order, error)
	ListAll() ([]*models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// Create пишет заказ и его позиции одной транзакцией.
func (r *orderRepository) Create(order *models.Order) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("order tx begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO orders (id, user_email, customer_name, phone, city, area, address, subtotal)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`
	if err := tx.QueryRow(q,
		order.ID,
		order.UserEmail,
		order.CustomerName,
		order.Phone,
		order.City,
		order.Area,
		order.Address,
		order.Subtotal,
	).Scan(&order.CreatedAt); err != nil {
		return fmt.Errorf("order create: %w", err)
	}

	const qi = `
		INSERT INTO order_items (order_id, name, size, quantity, price)
		VALUES ($1,$2,$3,$4,$5)
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(qi, order.ID, item.Name, item.Size, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("order item create: %w", err)
		}
	}
	return tx.Commit()
}

const orderColumns = `
	id, user_email, customer_name, phone, city, area, address, subtotal, created_at
`

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o := &models.Order{}
	err := r.DB.QueryRow(q, id).Scan(
		&o.ID, &o.UserEmail, &o.CustomerName, &o.Phone, &o.City, &o.Area, &o.Address,
		&o.Subtotal, &o.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("order get: %w", err)
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) ListByOwner(email string) ([]*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_email = $1 ORDER BY created_at DESC`
	return r.list(q, email)
}

func (r *orderRepository) ListAll() ([]*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(q)
}

func (r *orderRepository) list(q string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(
			&o.ID, &o.UserEmail, &o.CustomerName, &o.Phone, &o.City, &o.Area, &o.Address,
			&o.Subtotal, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("order list scan: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order list rows: %w", err)
	}
	for _, o := range orders {
		if err := r.loadItems(o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadItems(o *models.Order) error {
	const q = `
		SELECT name, size, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.DB.Query(q, o.ID)
	if err != nil {
		return fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.Name, &item.Size, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("order item scan: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
