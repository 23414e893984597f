package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bookstore-console/internal/core"
)

func TestOrder_DisplayID_UsesCreationYear(t *testing.T) {
	created := time.Date(2023, time.December, 28, 10, 0, 0, 0, time.UTC)
	order := core.Order{ID: 42, CreatedAt: created}

	if got := order.DisplayID(); got != "ORD-2023-42" {
		t.Errorf("DisplayID() = %q, want ORD-2023-42", got)
	}
}

func TestOrder_TotalMatches(t *testing.T) {
	lines := []core.OrderItem{
		{ProductTitle: "Madol Doova", Quantity: 3, UnitPrice: decimal.NewFromFloat(450.00)},
		{ProductTitle: "Viragaya", Quantity: 1, UnitPrice: decimal.NewFromFloat(1200.50)},
	}
	// 3×450.00 + 1×1200.50 = 2550.50

	tests := []struct {
		name  string
		total decimal.Decimal
		want  bool
	}{
		{"exact", decimal.NewFromFloat(2550.50), true},
		{"within tolerance above", decimal.NewFromFloat(2550.51), true},
		{"within tolerance below", decimal.NewFromFloat(2550.49), true},
		{"outside tolerance", decimal.NewFromFloat(2550.52), false},
		{"wildly off", decimal.NewFromFloat(100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := core.Order{Items: lines, TotalAmount: tt.total}
			if got := order.TotalMatches(); got != tt.want {
				t.Errorf("TotalMatches() = %v, want %v (total %s vs computed %s)",
					got, tt.want, tt.total, order.ItemsTotal())
			}
		})
	}
}

func TestOrder_Clone_DoesNotAliasItems(t *testing.T) {
	order := core.Order{
		ID:     1,
		Status: core.StatusPending,
		Items:  []core.OrderItem{{ProductTitle: "Gamperaliya", Quantity: 2, UnitPrice: decimal.NewFromInt(900)}},
	}

	clone := order.Clone()
	clone.Items[0].Quantity = 99

	if order.Items[0].Quantity != 2 {
		t.Error("mutating a clone's items must not touch the original")
	}
}

func TestOrder_Quantity_SumsLines(t *testing.T) {
	order := core.Order{Items: []core.OrderItem{
		{Quantity: 3}, {Quantity: 2}, {Quantity: 1},
	}}
	if got := order.Quantity(); got != 6 {
		t.Errorf("Quantity() = %d, want 6", got)
	}
}
