package services

import (
	"gorm.io/datatypes"

	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/models"
)

// Receipt payment flags.
const (
	ReceiptPaymentSuccess = "SUCCESS"
	ReceiptPaymentPending = "PENDING"
)

// BuildReceipt derives the display projection of an order.
func BuildReceipt(order *models.Order) *dto.Receipt {
	payer := order.PaymentData.Data()

	paymentFlag := ReceiptPaymentPending
	if order.PaymentStatus == models.PaymentStatusPaid {
		paymentFlag = ReceiptPaymentSuccess
	}

	items := make(datatypes.JSON, len(order.Items))
	copy(items, order.Items)

	return &dto.Receipt{
		StudentName:   payer.StudentName,
		StudentEmail:  payer.StudentEmail,
		OrderID:       order.ID,
		Items:         items,
		TotalAmount:   order.Total,
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: paymentFlag,
		PaymentTime:   order.PaymentTime,
		ValidTillTime: order.ValidTillTime,
		OrderStatus:   string(order.Status),
	}
}
