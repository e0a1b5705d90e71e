package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string

const (
	TransactionAdmission  TransactionType = "admission"
	TransactionRenewal    TransactionType = "renewal"
	TransactionDuePayment TransactionType = "due_payment"
	TransactionRefund     TransactionType = "refund"
)

type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentOnline PaymentMode = "online"
	PaymentCard   PaymentMode = "card"
	PaymentUPI    PaymentMode = "upi"
)

// PaymentModes lists every accepted payment mode in display order.
var PaymentModes = []PaymentMode{PaymentCash, PaymentOnline, PaymentCard, PaymentUPI}

// Transaction is a ledger entry. Once written it is never modified.
type Transaction struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Gym             primitive.ObjectID  `bson:"gym" json:"gym"`
	Member          primitive.ObjectID  `bson:"member" json:"member"`
	TransactionType TransactionType     `bson:"transactionType" json:"transactionType"`
	Amount          Money               `bson:"amount" json:"amount"`
	PaymentMode     PaymentMode         `bson:"paymentMode" json:"paymentMode"`
	Plan            *primitive.ObjectID `bson:"plan,omitempty" json:"plan,omitempty"`
	PlanName        string              `bson:"planName,omitempty" json:"planName,omitempty"`
	PlanDuration    string              `bson:"planDuration,omitempty" json:"planDuration,omitempty"`
	Discount        Money               `bson:"discount" json:"discount"`
	InvoiceSent     bool                `bson:"invoiceSent" json:"invoiceSent"`
	InvoiceNumber   string              `bson:"invoiceNumber,omitempty" json:"invoiceNumber,omitempty"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	ProcessedBy     primitive.ObjectID  `bson:"processedBy" json:"processedBy"`
	TransactionDate time.Time           `bson:"transactionDate" json:"transactionDate"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}
