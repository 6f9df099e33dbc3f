package order

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPendingCall Status = "Pending Call"
	StatusVerified    Status = "Verified"
	StatusProcessing  Status = "Processing"
	StatusShipped     Status = "Shipped"
	StatusDelivered   Status = "Delivered"
	StatusCancelled   Status = "Cancelled"
)

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a raw status value from a request.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPendingCall, StatusVerified, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// ActionableStatuses are the statuses an operator acts on from the live
// dashboard view.
var ActionableStatuses = []Status{StatusPendingCall, StatusVerified}

type ShippingDetails struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Status          Status          `json:"status"`
	TotalAmount     float64         `json:"totalAmount"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	CustomerName    string          `json:"customerName,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Summary is the condensed row shown in the recent-orders dashboard
// table.
type Summary struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customerName"`
	Status       Status    `json:"status"`
	TotalAmount  float64   `json:"totalAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}
