package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ReportKind identifies one dashboard report. Values double as the store's
// report endpoint path segments.
type ReportKind string

const (
	ReportStockLevels      ReportKind = "stock-levels"
	ReportBestSellers      ReportKind = "best-selling-books"
	ReportSalesVsCancelled ReportKind = "sales-vs-cancelled"
)

// ReportKinds lists every dashboard report in display order.
func ReportKinds() []ReportKind {
	return []ReportKind{ReportStockLevels, ReportBestSellers, ReportSalesVsCancelled}
}

func ParseReportKind(s string) (ReportKind, error) {
	switch ReportKind(s) {
	case ReportStockLevels, ReportBestSellers, ReportSalesVsCancelled:
		return ReportKind(s), nil
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

// Dataset is one named value sequence in a report series. The JSON shape
// ("label"/"data") matches what the chart layer consumes and what the store's
// pre-aggregated report endpoints emit.
type Dataset struct {
	Label  string            `json:"label"`
	Values []decimal.Decimal `json:"data"`
}

// ReportSeries is a chart-ready aggregation snapshot. Each refresh builds a
// fresh one; nothing mutates a series after it is returned.
type ReportSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Clone deep-copies a series so callers cannot alias the console's snapshot.
func (s *ReportSeries) Clone() *ReportSeries {
	if s == nil {
		return nil
	}
	out := &ReportSeries{
		Labels:   make([]string, len(s.Labels)),
		Datasets: make([]Dataset, len(s.Datasets)),
	}
	copy(out.Labels, s.Labels)
	for i, ds := range s.Datasets {
		vals := make([]decimal.Decimal, len(ds.Values))
		copy(vals, ds.Values)
		out.Datasets[i] = Dataset{Label: ds.Label, Values: vals}
	}
	return out
}
