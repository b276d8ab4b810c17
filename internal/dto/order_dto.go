package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

type CreateOrderRequest struct {
	UserID        string          `json:"userId"`
	Items         json.RawMessage `json:"items"`
	Total         *float64        `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
}

// LineItems decodes the submitted cart for validation and pricing. The raw
// array is what gets stored.
func (r *CreateOrderRequest) LineItems() ([]OrderItemData, error) {
	raw := bytes.TrimSpace(r.Items)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []OrderItemData
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// OrderItemData is a cart line as sent by clients. Older clients send the
// unit price as "price"; it is accepted when "unitPrice" is absent.
type OrderItemData struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

func (d *OrderItemData) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Name      string          `json:"name"`
		UnitPrice *float64        `json:"unitPrice"`
		Price     *float64        `json:"price"`
		Quantity  int             `json:"quantity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	d.ID = rawID(raw.ID)
	d.Name = raw.Name
	d.Quantity = raw.Quantity
	switch {
	case raw.UnitPrice != nil:
		d.UnitPrice = *raw.UnitPrice
	case raw.Price != nil:
		d.UnitPrice = *raw.Price
	}
	return nil
}

// rawID accepts both string and numeric catalog ids.
func rawID(b json.RawMessage) string {
	if len(b) == 0 || string(b) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}

func (d OrderItemData) ToModel() models.LineItem {
	return models.LineItem{
		ID:        d.ID,
		Name:      d.Name,
		UnitPrice: d.UnitPrice,
		Quantity:  d.Quantity,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CancelOrderRequest struct {
	UserID string `json:"userId"`
}

// Receipt is the display projection of a freshly placed order. It is never
// stored.
type Receipt struct {
	StudentName   string         `json:"studentName"`
	StudentEmail  string         `json:"studentEmail"`
	OrderID       uuid.UUID      `json:"orderId"`
	Items         datatypes.JSON `json:"items"`
	TotalAmount   float64        `json:"totalAmount"`
	PaymentMethod string         `json:"paymentMethod"`
	PaymentStatus string         `json:"paymentStatus"`
	PaymentTime   time.Time      `json:"paymentTime"`
	ValidTillTime time.Time      `json:"validTillTime"`
	OrderStatus   string         `json:"orderStatus"`
}

type CreateOrderResponse struct {
	Success bool          `json:"success"`
	Order   *models.Order `json:"order"`
	Receipt *Receipt      `json:"receipt"`
}

type OrderResponse struct {
	Success bool          `json:"success"`
	Order   *models.Order `json:"order"`
}

type OrderListResponse struct {
	Success bool           `json:"success"`
	Orders  []models.Order `json:"orders"`
}

type MenuResponse struct {
	Success bool              `json:"success"`
	Items   []models.MenuItem `json:"items"`
}
