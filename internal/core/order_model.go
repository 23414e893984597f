package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Values match the store's wire
// literals exactly; anything else is rejected at decode time.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusDeclined  Status = "Declined"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus maps a wire literal to a Status. Unknown literals are an error,
// not a fallthrough.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusDeclined, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Badge returns the presentation class for a status. The mapping is
// exhaustive over the five statuses; there is no catch-all.
func (s Status) Badge() string {
	switch s {
	case StatusPending:
		return "warning"
	case StatusApproved:
		return "info"
	case StatusDelivered:
		return "success"
	case StatusDeclined:
		return "danger"
	case StatusCancelled:
		return "danger"
	}
	return ""
}

// Customer is the order's customer snapshot as the store sends it.
type Customer struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	MobileNumber string `json:"mobile_number"`
}

// OrderItem is one immutable line on an order.
type OrderItem struct {
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity × unit price for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer purchase record. The store owns it; this process only
// ever changes it through a validated status transition.
type Order struct {
	ID          int             `json:"id"`
	Status      Status          `json:"status"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Customer    Customer        `json:"customer"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DisplayID derives the operator-facing identifier, ORD-<year>-<id>.
// The year comes from the order's creation time, not the wall clock, so an
// order placed in December keeps its identifier in January.
func (o Order) DisplayID() string {
	return fmt.Sprintf("ORD-%d-%d", o.CreatedAt.Year(), o.ID)
}

// ItemsTotal sums the line subtotals.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// totalTolerance is the currency rounding tolerance for the total invariant.
var totalTolerance = decimal.NewFromFloat(0.01)

// TotalMatches reports whether the stored total agrees with the recomputed
// sum of line subtotals within rounding tolerance.
func (o Order) TotalMatches() bool {
	diff := o.TotalAmount.Sub(o.ItemsTotal()).Abs()
	return diff.LessThanOrEqual(totalTolerance)
}

// Quantity returns the total ordered quantity across all lines.
func (o Order) Quantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Clone returns a deep copy, so snapshots handed out by the console cannot
// alias the console's own state.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

// CloneOrders deep-copies an order slice.
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

// InventoryRecord is a raw stock row from the store's catalog, used when
// reports are aggregated locally instead of fetched pre-aggregated.
type InventoryRecord struct {
	ProductTitle  string          `json:"product_title"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
}
