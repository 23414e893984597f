package app

import (
	"time"

	"bookstore-console/internal/core"
)

// OrderRow is one row of the orders table, pre-formatted for display.
type OrderRow struct {
	ID           int    `json:"id"`
	DisplayID    string `json:"display_id"`
	ProductTitle string `json:"product_title"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	TotalAmount  string `json:"total_amount"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
	Badge        string `json:"badge"`
}

// OrderDetail extends a row with the fields the detail view shows.
type OrderDetail struct {
	OrderRow
	CustomerAddress string           `json:"customer_address"`
	CustomerMobile  string           `json:"customer_mobile"`
	CreatedAt       time.Time        `json:"created_at"`
	Items           []core.OrderItem `json:"items"`
	AllowedMoves    []core.Status    `json:"allowed_moves"`
}

// BuildOrderRow formats one order for the list table. Multi-line orders show
// the first item's title, matching the store console's table layout.
func BuildOrderRow(o core.Order) OrderRow {
	row := OrderRow{
		ID:           o.ID,
		DisplayID:    o.DisplayID(),
		Quantity:     o.Quantity(),
		TotalAmount:  core.FormatLKR(o.TotalAmount),
		CustomerName: o.Customer.Name,
		Status:       string(o.Status),
		Badge:        o.Status.Badge(),
	}
	if len(o.Items) > 0 {
		row.ProductTitle = o.Items[0].ProductTitle
		row.UnitPrice = core.FormatLKR(o.Items[0].UnitPrice)
	}
	return row
}

// BuildOrderDetail formats one order for the detail view.
func BuildOrderDetail(o core.Order) OrderDetail {
	items := make([]core.OrderItem, len(o.Items))
	copy(items, o.Items)
	return OrderDetail{
		OrderRow:        BuildOrderRow(o),
		CustomerAddress: o.Customer.Address,
		CustomerMobile:  o.Customer.MobileNumber,
		CreatedAt:       o.CreatedAt,
		Items:           items,
		AllowedMoves:    core.AllowedTransitions(o.Status),
	}
}

// Rows formats a snapshot's orders, optionally filtered by status.
func Rows(snap Snapshot, status core.Status) []OrderRow {
	rows := make([]OrderRow, 0, len(snap.Orders))
	for _, o := range snap.Orders {
		if status != "" && o.Status != status {
			continue
		}
		rows = append(rows, BuildOrderRow(o))
	}
	return rows
}
