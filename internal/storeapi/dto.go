package storeapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bookstore-console/internal/core"
)

// dotnetList decodes a JSON collection that may arrive either as a bare
// array or wrapped in the .NET reference-preserving envelope
// {"$values": [...]}. The store emits the latter; tests and any future
// backend emit the former.
type dotnetList[T any] struct {
	Items []T
}

func (l *dotnetList[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}
	var envelope struct {
		Values []T `json:"$values"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	l.Items = envelope.Values
	return nil
}

type customerDTO struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address"`
	MobileNumber string `json:"mobileNumber"`
}

type bookDTO struct {
	Title string          `json:"title" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

type orderItemDTO struct {
	Book     bookDTO `json:"book"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

type orderDTO struct {
	ID         int                     `json:"id" validate:"gt=0"`
	Quantity   int                     `json:"quantity"`
	TotalPrice decimal.Decimal         `json:"totalPrice"`
	Status     string                  `json:"status" validate:"required"`
	CreateAt   string                  `json:"createAt"`
	Customer   customerDTO             `json:"customer"`
	OrderItems dotnetList[orderItemDTO] `json:"orderItems"`
}

// createAtLayouts covers the timestamp shapes the store has been seen to
// emit: RFC 3339 with and without zone offset or fractional seconds.
var createAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseCreateAt(s string) (time.Time, error) {
	for _, layout := range createAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable createAt timestamp %q", s)
}

// toDomain maps the wire record to a core.Order. Unknown status literals and
// unparseable timestamps fail the mapping.
func (d orderDTO) toDomain() (core.Order, error) {
	status, err := core.ParseStatus(d.Status)
	if err != nil {
		return core.Order{}, fmt.Errorf("order %d: %w", d.ID, err)
	}

	createdAt, err := parseCreateAt(d.CreateAt)
	if err != nil {
		return core.Order{}, fmt.Errorf("order %d: %w", d.ID, err)
	}

	items := make([]core.OrderItem, 0, len(d.OrderItems.Items))
	for _, it := range d.OrderItems.Items {
		price := it.Book.Price
		// Older store builds omit the book price; with a single line the
		// unit price is recoverable from the order total.
		if price.IsZero() && len(d.OrderItems.Items) == 1 && it.Quantity > 0 {
			price = d.TotalPrice.DivRound(decimal.NewFromInt(int64(it.Quantity)), 2)
		}
		items = append(items, core.OrderItem{
			ProductTitle: it.Book.Title,
			Quantity:     it.Quantity,
			UnitPrice:    price,
		})
	}

	return core.Order{
		ID:          d.ID,
		Status:      status,
		Items:       items,
		TotalAmount: d.TotalPrice,
		Customer: core.Customer{
			Name:         d.Customer.Name,
			Address:      d.Customer.Address,
			MobileNumber: d.Customer.MobileNumber,
		},
		CreatedAt: createdAt,
	}, nil
}

type bookRecordDTO struct {
	Title         string          `json:"title" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

func (d bookRecordDTO) toDomain() core.InventoryRecord {
	return core.InventoryRecord{
		ProductTitle:  d.Title,
		UnitPrice:     d.Price,
		StockQuantity: d.StockQuantity,
	}
}

// seriesDTO decodes the store's pre-aggregated chart payloads, whose
// collections may also carry the $values envelope.
type seriesDTO struct {
	Labels   dotnetList[string]     `json:"labels"`
	Datasets dotnetList[datasetDTO] `json:"datasets"`
}

type datasetDTO struct {
	Label string                       `json:"label"`
	Data  dotnetList[decimal.Decimal] `json:"data"`
}

func (d seriesDTO) toDomain() *core.ReportSeries {
	series := &core.ReportSeries{
		Labels:   d.Labels.Items,
		Datasets: make([]core.Dataset, 0, len(d.Datasets.Items)),
	}
	if series.Labels == nil {
		series.Labels = []string{}
	}
	for _, ds := range d.Datasets.Items {
		series.Datasets = append(series.Datasets, core.Dataset{
			Label:  ds.Label,
			Values: ds.Data.Items,
		})
	}
	return series
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}
