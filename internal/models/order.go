package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentUPI     PaymentMethod = "UPI"
	PaymentGPay    PaymentMethod = "GPAY"
	PaymentPhonePe PaymentMethod = "PHONEPE"
)

// Payment status labels written at creation. Non-cash methods are simulated
// and recorded as paid immediately.
const (
	PaymentStatusCash = "CASH"
	PaymentStatusPaid = "PAID"
)

// LineItem is the priced view of one submitted cart entry. The order keeps
// the cart exactly as submitted; LineItem is only used to validate and price it.
type LineItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// PaymentData is the payer display snapshot taken at creation.
type PaymentData struct {
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// Order is a single canteen order. Only Status changes after creation.
type Order struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID                       `gorm:"type:uuid;not null;index" json:"user_id"`
	Items         datatypes.JSON                  `gorm:"type:text;not null" json:"items"`
	Total         float64                         `gorm:"type:numeric(10,2);not null" json:"total"`
	Status        OrderStatus                     `gorm:"size:20;not null;index" json:"status"`
	PaymentMethod PaymentMethod                   `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus string                          `gorm:"size:30;not null" json:"payment_status"`
	PaymentTime   time.Time                       `gorm:"not null" json:"payment_time"`
	ValidTillTime time.Time                       `gorm:"not null" json:"valid_till_time"`
	PaymentData   datatypes.JSONType[PaymentData] `gorm:"type:text;not null" json:"payment_data"`
	CreatedAt     time.Time                       `gorm:"not null;index" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}
