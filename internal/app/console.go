// Package app holds the console view model: the single state container every
// UI adapter (web, CLI) reads from and issues actions against. It contains no
// display logic; adapters render the snapshots it hands out.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bookstore-console/internal/apperr"
	"bookstore-console/internal/core"
	"bookstore-console/internal/metrics"
)

// Store is the console's view of the external order and catalog store.
// *storeapi.Client satisfies it; tests substitute a fake.
type Store interface {
	ListOrders(ctx context.Context) ([]core.Order, error)
	GetOrder(ctx context.Context, id int) (*core.Order, error)
	UpdateStatus(ctx context.Context, id int, to core.Status) (*core.Order, error)
	ListInventory(ctx context.Context) ([]core.InventoryRecord, error)
	FetchReportSeries(ctx context.Context, kind core.ReportKind) (*core.ReportSeries, error)
}

// ReportSource selects where report series come from.
type ReportSource string

const (
	// ReportSourceRemote fetches pre-aggregated series from the store.
	ReportSourceRemote ReportSource = "remote"
	// ReportSourceLocal aggregates raw orders and inventory in-process.
	ReportSourceLocal ReportSource = "local"
)

// Notice is a user-visible notification. Every failure an action hits
// becomes one of these; none propagate as uncaught faults.
type Notice struct {
	Level   string `json:"level"` // "info", "success", "error"
	Message string `json:"message"`
}

// Snapshot is an immutable copy of the console's list state.
type Snapshot struct {
	Orders    []core.Order    `json:"orders"`
	Loading   map[string]bool `json:"loading"`
	LastError apperr.Kind     `json:"last_error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const (
	loadingOrders  = "orders"
	loadingReports = "reports"
)

// Console orchestrates fetch → transform → present for the operator console.
// A single mutex guards the state slots; network calls happen outside it, so
// concurrent refreshes race and the last response to arrive wins the orders
// slot. Transition requests are serialized per order id.
type Console struct {
	store   Store
	agg     core.Aggregator
	source  ReportSource
	log     *slog.Logger
	metrics *metrics.ConsoleMetrics

	mu         sync.Mutex
	orders     []core.Order
	selectedID *int
	reports    map[core.ReportKind]*core.ReportSeries
	loading    map[string]bool
	lastErr    apperr.Kind
	updatedAt  time.Time
	notices    []Notice

	lockMu     sync.Mutex
	orderLocks map[int]*sync.Mutex
}

func NewConsole(store Store, agg core.Aggregator, source ReportSource, log *slog.Logger, m *metrics.ConsoleMetrics) *Console {
	if log == nil {
		log = slog.Default()
	}
	if source == "" {
		source = ReportSourceLocal
	}
	return &Console{
		store:      store,
		agg:        agg,
		source:     source,
		log:        log,
		metrics:    m,
		reports:    make(map[core.ReportKind]*core.ReportSeries),
		loading:    make(map[string]bool),
		orderLocks: make(map[int]*sync.Mutex),
	}
}

// ── Refresh actions ───────────────────────────────────────────────────────────

// RefreshOrders replaces the orders snapshot with the store's current state.
// Concurrent calls are allowed; whichever response arrives last overwrites
// the slot. On failure the prior snapshot is retained.
func (c *Console) RefreshOrders(ctx context.Context) error {
	c.setLoading(loadingOrders, true)
	defer c.setLoading(loadingOrders, false)

	start := time.Now()
	orders, err := c.store.ListOrders(ctx)
	c.metrics.ObserveStoreCall("list_orders", start)
	if err != nil {
		c.metrics.ObserveRefresh("orders", "error")
		c.failAction("Failed to load orders.", err)
		return err
	}

	for _, o := range orders {
		if !o.TotalMatches() {
			c.log.Warn("order total does not match line subtotals",
				"order", o.DisplayID(),
				"stored", o.TotalAmount.String(),
				"computed", o.ItemsTotal().String())
		}
	}

	c.mu.Lock()
	c.orders = orders
	c.lastErr = ""
	c.updatedAt = time.Now()
	if c.selectedID != nil {
		if _, ok := findOrder(c.orders, *c.selectedID); !ok {
			c.selectedID = nil
		}
	}
	c.mu.Unlock()

	c.metrics.ObserveRefresh("orders", "ok")
	return nil
}

// RefreshReports recomputes every report series. Each kind succeeds or fails
// independently; a failed kind keeps its previous snapshot.
func (c *Console) RefreshReports(ctx context.Context) error {
	c.setLoading(loadingReports, true)
	defer c.setLoading(loadingReports, false)

	var firstErr error
	if c.source == ReportSourceRemote {
		for _, kind := range core.ReportKinds() {
			start := time.Now()
			series, err := c.store.FetchReportSeries(ctx, kind)
			c.metrics.ObserveStoreCall("fetch_report", start)
			if err != nil {
				c.metrics.ObserveRefresh("reports", "error")
				c.failAction("Failed to load the "+string(kind)+" report.", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			c.storeReport(kind, series)
		}
	} else {
		orders, inventory, err := c.fetchRawReportInputs(ctx)
		if err != nil {
			c.metrics.ObserveRefresh("reports", "error")
			c.failAction("Failed to load report data.", err)
			return err
		}
		for _, kind := range core.ReportKinds() {
			series := c.agg.Aggregate(kind, orders, inventory)
			c.storeReport(kind, &series)
		}
	}

	if firstErr == nil {
		c.metrics.ObserveRefresh("reports", "ok")
	}
	return firstErr
}

func (c *Console) fetchRawReportInputs(ctx context.Context) ([]core.Order, []core.InventoryRecord, error) {
	start := time.Now()
	orders, err := c.store.ListOrders(ctx)
	c.metrics.ObserveStoreCall("list_orders", start)
	if err != nil {
		return nil, nil, err
	}

	start = time.Now()
	inventory, err := c.store.ListInventory(ctx)
	c.metrics.ObserveStoreCall("list_inventory", start)
	if err != nil {
		return nil, nil, err
	}
	return orders, inventory, nil
}

func (c *Console) storeReport(kind core.ReportKind, series *core.ReportSeries) {
	c.mu.Lock()
	c.reports[kind] = series
	c.updatedAt = time.Now()
	c.mu.Unlock()
}

// ── Transition action ─────────────────────────────────────────────────────────

// RequestTransition validates and persists a status change for one order.
// The in-memory order is replaced only on success; on any failure the
// snapshot is untouched and the error surfaces as a notification. Requests
// for the same order are serialized locally; the store's conflict detection
// remains the guard against other sessions.
func (c *Console) RequestTransition(ctx context.Context, orderID int, to core.Status) (*core.Order, error) {
	lock := c.lockFor(orderID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	order, ok := findOrder(c.orders, orderID)
	c.mu.Unlock()
	if !ok {
		err := apperr.NotFoundErr("That order is no longer in the list. Refresh and try again.")
		c.clearSelectionIf(orderID)
		c.failAction("Order not found.", err)
		return nil, err
	}

	transition, err := core.ProposeTransition(order, to)
	if err != nil {
		// Illegal edge: surfaced without any network call.
		c.metrics.ObserveTransition(string(to), "invalid")
		c.failAction("That status change is not allowed.", err)
		return nil, err
	}

	start := time.Now()
	updated, err := c.store.UpdateStatus(ctx, orderID, transition.To)
	c.metrics.ObserveStoreCall("update_status", start)
	if err != nil {
		c.metrics.ObserveTransition(string(to), string(apperr.KindOf(err)))
		switch apperr.KindOf(err) {
		case apperr.Conflict:
			c.failAction("The order changed elsewhere. Refresh before retrying.", err)
		case apperr.NotFound:
			c.clearSelectionIf(orderID)
			c.failAction("The order no longer exists.", err)
		default:
			c.failAction("Failed to update the order status.", err)
		}
		return nil, err
	}

	if updated == nil {
		// Store acknowledged without a body; apply the validated transition
		// to our own copy.
		applied := order.Clone()
		applied.Status = transition.To
		updated = &applied
	}

	c.mu.Lock()
	for i := range c.orders {
		if c.orders[i].ID == orderID {
			c.orders[i] = updated.Clone()
			break
		}
	}
	c.lastErr = ""
	c.updatedAt = time.Now()
	c.mu.Unlock()

	c.metrics.ObserveTransition(string(to), "ok")
	c.notify("success", order.DisplayID()+" is now "+string(transition.To)+".")
	result := updated.Clone()
	return &result, nil
}

// ── Selection ─────────────────────────────────────────────────────────────────

// SelectOrder focuses the detail view on an already-loaded order. It is pure
// state: no network call, the detail renders from list data.
func (c *Console) SelectOrder(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := findOrder(c.orders, id); !ok {
		return apperr.NotFoundErr("That order is not loaded.")
	}
	c.selectedID = &id
	return nil
}

func (c *Console) ClearSelection() {
	c.mu.Lock()
	c.selectedID = nil
	c.mu.Unlock()
}

// SelectedOrder returns a copy of the focused order, if any.
func (c *Console) SelectedOrder() (*core.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == nil {
		return nil, false
	}
	order, ok := findOrder(c.orders, *c.selectedID)
	if !ok {
		return nil, false
	}
	clone := order.Clone()
	return &clone, true
}

func (c *Console) clearSelectionIf(id int) {
	c.mu.Lock()
	if c.selectedID != nil && *c.selectedID == id {
		c.selectedID = nil
	}
	c.mu.Unlock()
}

// ── Reads ─────────────────────────────────────────────────────────────────────

// Snapshot returns a deep copy of the list state.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	loading := make(map[string]bool, len(c.loading))
	for k, v := range c.loading {
		loading[k] = v
	}
	return Snapshot{
		Orders:    core.CloneOrders(c.orders),
		Loading:   loading,
		LastError: c.lastErr,
		UpdatedAt: c.updatedAt,
	}
}

// Report returns a copy of the latest series for a kind, or nil when it has
// not been computed yet.
func (c *Console) Report(kind core.ReportKind) *core.ReportSeries {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports[kind].Clone()
}

// Notifications drains and returns the pending user-visible notices.
func (c *Console) Notifications() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// ── Internals ─────────────────────────────────────────────────────────────────

func (c *Console) lockFor(orderID int) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	if l, ok := c.orderLocks[orderID]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.orderLocks[orderID] = l
	return l
}

func (c *Console) setLoading(key string, v bool) {
	c.mu.Lock()
	c.loading[key] = v
	c.mu.Unlock()
}

func (c *Console) notify(level, message string) {
	c.mu.Lock()
	c.notices = append(c.notices, Notice{Level: level, Message: message})
	c.mu.Unlock()
}

// failAction records a failed action: structured log, error slot, notice.
func (c *Console) failAction(publicMsg string, err error) {
	kind := apperr.KindOf(err)
	c.log.Error("console action failed", "kind", string(kind), "err", err)

	c.mu.Lock()
	c.lastErr = kind
	c.notices = append(c.notices, Notice{Level: "error", Message: apperr.PublicMessage(err)})
	if publicMsg != "" && apperr.PublicMessage(err) == "An unexpected error occurred." {
		c.notices[len(c.notices)-1].Message = publicMsg
	}
	c.mu.Unlock()
}

func findOrder(orders []core.Order, id int) (core.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return core.Order{}, false
}
