package order

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// StatusAll is the "no status filter" value of the admin list.
const StatusAll = "all"

var Statuses = []Status{
	StatusPending,
	StatusNew,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

var ErrInvalidStatus = errors.New("invalid order status")

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, error) {
	want := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsDelivered compares case-insensitively.
func IsDelivered(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), string(StatusDelivered))
}
