package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const Collection = "orders"

// Line is one product of a submitted order.
type Line struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"product_price"`
	Quantity    int     `json:"product_quantity"`
}

// Total is Σ price × quantity over lines.
func Total(lines []Line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.InexactFloat64()
}

// New is a checkout submission.
type New struct {
	FullName    string
	PhoneNumber string
	City        string
	Address     string
	Lines       []Line
	SubmittedAt time.Time
}

// Placed describes an order that was written successfully.
type Placed struct {
	ID          string    `json:"orderId"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	City        string    `json:"city"`
	Lines       []Line    `json:"lines"`
	Total       float64   `json:"total"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminItem is a line as read back by the back office, where any field may be
// missing or malformed.
type AdminItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type AdminOrder struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	PhoneNumber  string      `json:"phoneNumber"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	CreatedAt    time.Time   `json:"date"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Total        float64     `json:"total"`
	Status       string      `json:"status"`
	Items        []AdminItem `json:"items"`
}
