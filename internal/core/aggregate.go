package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BestSellerPolicy controls which orders count toward the best-seller
// ranking. The two source variants disagreed, so the choice is explicit
// configuration rather than a hidden constant.
type BestSellerPolicy string

const (
	// BestSellerDeliveredOnly counts only Delivered orders.
	BestSellerDeliveredOnly BestSellerPolicy = "delivered-only"
	// BestSellerNonCancelled counts everything except Cancelled orders.
	BestSellerNonCancelled BestSellerPolicy = "non-cancelled"
)

func ParseBestSellerPolicy(s string) (BestSellerPolicy, error) {
	switch BestSellerPolicy(s) {
	case BestSellerDeliveredOnly, BestSellerNonCancelled:
		return BestSellerPolicy(s), nil
	}
	return "", &InvalidPolicyError{Value: s}
}

type InvalidPolicyError struct{ Value string }

func (e *InvalidPolicyError) Error() string {
	return "unknown best-seller policy " + e.Value
}

// DefaultTopN caps the best-seller ranking when no limit is configured.
const DefaultTopN = 5

// Aggregator folds raw order and inventory snapshots into report series.
// Every method is a pure function of its arguments: same input, same series.
type Aggregator struct {
	Policy BestSellerPolicy
	TopN   int
}

func NewAggregator(policy BestSellerPolicy, topN int) Aggregator {
	if policy == "" {
		policy = BestSellerNonCancelled
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return Aggregator{Policy: policy, TopN: topN}
}

// StockLevels emits one point per product with its remaining quantity.
// Products with zero stock are kept: a stockout the dashboard cannot see is
// a stockout nobody reorders.
func (a Aggregator) StockLevels(inventory []InventoryRecord) ReportSeries {
	sorted := make([]InventoryRecord, len(inventory))
	copy(sorted, inventory)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductTitle < sorted[j].ProductTitle
	})

	labels := make([]string, 0, len(sorted))
	values := make([]decimal.Decimal, 0, len(sorted))
	for _, rec := range sorted {
		labels = append(labels, rec.ProductTitle)
		values = append(values, decimal.NewFromInt(int64(rec.StockQuantity)))
	}
	return ReportSeries{
		Labels:   labels,
		Datasets: []Dataset{{Label: "In Stock", Values: values}},
	}
}

// countsForBestSellers reports whether an order's quantities enter the
// ranking under the configured policy.
func (a Aggregator) countsForBestSellers(o Order) bool {
	switch a.Policy {
	case BestSellerDeliveredOnly:
		return o.Status == StatusDelivered
	default:
		return o.Status != StatusCancelled
	}
}

// BestSellers ranks products by total ordered quantity, descending, with
// ties broken by product title ascending so repeated runs agree. The series
// is truncated to TopN products.
func (a Aggregator) BestSellers(orders []Order) ReportSeries {
	totals := make(map[string]int)
	for _, o := range orders {
		if !a.countsForBestSellers(o) {
			continue
		}
		for _, it := range o.Items {
			totals[it.ProductTitle] += it.Quantity
		}
	}

	type ranked struct {
		title string
		qty   int
	}
	rank := make([]ranked, 0, len(totals))
	for title, qty := range totals {
		rank = append(rank, ranked{title: title, qty: qty})
	}
	sort.Slice(rank, func(i, j int) bool {
		if rank[i].qty != rank[j].qty {
			return rank[i].qty > rank[j].qty
		}
		return rank[i].title < rank[j].title
	})

	limit := a.TopN
	if limit <= 0 {
		limit = DefaultTopN
	}
	if len(rank) > limit {
		rank = rank[:limit]
	}

	labels := make([]string, 0, len(rank))
	values := make([]decimal.Decimal, 0, len(rank))
	for _, r := range rank {
		labels = append(labels, r.title)
		values = append(values, decimal.NewFromInt(int64(r.qty)))
	}
	return ReportSeries{
		Labels:   labels,
		Datasets: []Dataset{{Label: "Units Ordered", Values: values}},
	}
}

// SalesVsCancelled partitions concluded orders into sales (Delivered and
// other non-Cancelled terminal statuses) versus Cancelled. Both order counts
// and revenue sums are emitted, because the dashboard's proportion chart has
// historically conflated the two.
func (a Aggregator) SalesVsCancelled(orders []Order) ReportSeries {
	var salesCount, cancelledCount int
	salesRevenue := decimal.Zero
	cancelledRevenue := decimal.Zero

	for _, o := range orders {
		switch {
		case o.Status == StatusCancelled:
			cancelledCount++
			cancelledRevenue = cancelledRevenue.Add(o.TotalAmount)
		case o.Status == StatusDelivered || o.Status.IsTerminal():
			salesCount++
			salesRevenue = salesRevenue.Add(o.TotalAmount)
		}
	}

	return ReportSeries{
		Labels: []string{"Sales", "Cancelled"},
		Datasets: []Dataset{
			{
				Label:  "Orders",
				Values: []decimal.Decimal{decimal.NewFromInt(int64(salesCount)), decimal.NewFromInt(int64(cancelledCount))},
			},
			{
				Label:  "Revenue",
				Values: []decimal.Decimal{salesRevenue, cancelledRevenue},
			},
		},
	}
}

// Aggregate dispatches to the fold for the given report kind.
func (a Aggregator) Aggregate(kind ReportKind, orders []Order, inventory []InventoryRecord) ReportSeries {
	switch kind {
	case ReportStockLevels:
		return a.StockLevels(inventory)
	case ReportBestSellers:
		return a.BestSellers(orders)
	case ReportSalesVsCancelled:
		return a.SalesVsCancelled(orders)
	}
	return ReportSeries{}
}
