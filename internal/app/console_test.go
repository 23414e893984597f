package app_test

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bookstore-console/internal/app"
	"bookstore-console/internal/apperr"
	"bookstore-console/internal/core"
)

// fakeStore is an in-memory stand-in for the remote order store.
type fakeStore struct {
	mu          sync.Mutex
	orders      []core.Order
	inventory   []core.InventoryRecord
	listErr     error
	updateErr   error
	updateCalls int
	listCalls   int
	// listHook, when set, replaces the canned ListOrders response, used to
	// stage racing refreshes deterministically.
	listHook func(call int) ([]core.Order, error)
}

func (f *fakeStore) ListOrders(ctx context.Context) ([]core.Order, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		return hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return core.CloneOrders(f.orders), nil
}

func (f *fakeStore) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			clone := o.Clone()
			return &clone, nil
		}
	}
	return nil, apperr.NotFoundErr("order not found")
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id int, to core.Status) (*core.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = to
			clone := f.orders[i].Clone()
			return &clone, nil
		}
	}
	return nil, apperr.NotFoundErr("order not found")
}

func (f *fakeStore) ListInventory(ctx context.Context) ([]core.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.InventoryRecord, len(f.inventory))
	copy(out, f.inventory)
	return out, nil
}

func (f *fakeStore) FetchReportSeries(ctx context.Context, kind core.ReportKind) (*core.ReportSeries, error) {
	return &core.ReportSeries{
		Labels:   []string{string(kind)},
		Datasets: []core.Dataset{{Label: "remote", Values: []decimal.Decimal{decimal.NewFromInt(1)}}},
	}, nil
}

func pendingOrder(id int) core.Order {
	return core.Order{
		ID:     id,
		Status: core.StatusPending,
		Items: []core.OrderItem{
			{ProductTitle: "Madol Doova", Quantity: 2, UnitPrice: decimal.NewFromInt(450)},
		},
		TotalAmount: decimal.NewFromInt(900),
		Customer:    core.Customer{Name: "Nimal Perera"},
		CreatedAt:   time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newTestConsole(store *fakeStore) *app.Console {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := core.NewAggregator(core.BestSellerNonCancelled, 5)
	return app.NewConsole(store, agg, app.ReportSourceLocal, log, nil)
}

func TestRefreshOrders_Idempotent(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7), pendingOrder(8)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first := console.Snapshot().Orders

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	second := console.Snapshot().Orders

	if !reflect.DeepEqual(first, second) {
		t.Errorf("unchanged remote state must yield identical snapshots:\n%+v\n%+v", first, second)
	}
}

func TestRefreshOrders_FailureRetainsPriorState(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	store.mu.Lock()
	store.listErr = apperr.TransportErr("store down", nil)
	store.mu.Unlock()

	if err := console.RefreshOrders(ctx); err == nil {
		t.Fatal("expected refresh to fail")
	}

	snap := console.Snapshot()
	if len(snap.Orders) != 1 || snap.Orders[0].ID != 7 {
		t.Errorf("prior snapshot must be retained, got %+v", snap.Orders)
	}
	if snap.LastError != apperr.Transport {
		t.Errorf("last error = %s, want transport", snap.LastError)
	}

	notices := console.Notifications()
	if len(notices) == 0 || notices[0].Level != "error" {
		t.Errorf("failure must surface a notification, got %+v", notices)
	}
}

// TestRefreshOrders_LastArrivalWins overlaps two refreshes and releases the
// later-issued one first. The refresh whose response arrives last must own
// the orders slot, regardless of issue order.
func TestRefreshOrders_LastArrivalWins(t *testing.T) {
	gate1 := make(chan struct{})
	gate2 := make(chan struct{})
	staleOrders := []core.Order{pendingOrder(1)}
	freshOrders := []core.Order{pendingOrder(1), pendingOrder(2)}

	store := &fakeStore{}
	store.listHook = func(call int) ([]core.Order, error) {
		if call == 1 {
			<-gate1
			return core.CloneOrders(staleOrders), nil
		}
		<-gate2
		return core.CloneOrders(freshOrders), nil
	}
	console := newTestConsole(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	var wgSecond sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = console.RefreshOrders(ctx)
	}()
	// Wait until the first request is parked on its gate before issuing the second.
	for {
		store.mu.Lock()
		started := store.listCalls >= 1
		store.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	wg.Add(1)
	wgSecond.Add(1)
	go func() {
		defer wg.Done()
		defer wgSecond.Done()
		_ = console.RefreshOrders(ctx)
	}()

	// Release the second (fresh) response first and let it land.
	close(gate2)
	wgSecond.Wait()

	// Now the first (stale) response arrives last and overwrites.
	close(gate1)
	wg.Wait()

	snap := console.Snapshot()
	if len(snap.Orders) != 1 {
		t.Errorf("last response to arrive must win the slot: got %d orders, want the stale single-order payload", len(snap.Orders))
	}
}

func TestRequestTransition_IllegalEdgeNeverCallsStore(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_, err := console.RequestTransition(ctx, 7, core.StatusDelivered)
	if !apperr.IsKind(err, apperr.InvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}
	if store.updateCalls != 0 {
		t.Errorf("illegal edge must not reach the store, got %d calls", store.updateCalls)
	}

	snap := console.Snapshot()
	if snap.Orders[0].Status != core.StatusPending {
		t.Errorf("order must remain Pending, got %s", snap.Orders[0].Status)
	}
}

func TestRequestTransition_ApproveThenApproveAgainFails(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	updated, err := console.RequestTransition(ctx, 7, core.StatusApproved)
	if err != nil {
		t.Fatalf("Pending -> Approved should succeed: %v", err)
	}
	if updated.Status != core.StatusApproved {
		t.Errorf("updated status = %s", updated.Status)
	}
	if got := console.Snapshot().Orders[0].Status; got != core.StatusApproved {
		t.Errorf("snapshot status = %s, want Approved", got)
	}

	_, err = console.RequestTransition(ctx, 7, core.StatusApproved)
	if !apperr.IsKind(err, apperr.InvalidTransition) {
		t.Fatalf("Approved -> Approved must fail, got %v", err)
	}
}

func TestRequestTransition_ConflictLeavesSnapshotUntouched(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	store.mu.Lock()
	store.updateErr = apperr.ConflictErr("changed concurrently")
	store.mu.Unlock()

	_, err := console.RequestTransition(ctx, 7, core.StatusApproved)
	if !apperr.IsKind(err, apperr.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := console.Snapshot().Orders[0].Status; got != core.StatusPending {
		t.Errorf("conflict must not mutate the snapshot, got %s", got)
	}
}

func TestRequestTransition_UnknownOrderClearsSelection(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := console.SelectOrder(7); err != nil {
		t.Fatalf("select: %v", err)
	}

	// Simulate the order vanishing remotely, then the list being re-pulled.
	store.mu.Lock()
	store.orders = nil
	store.mu.Unlock()
	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_, err := console.RequestTransition(ctx, 7, core.StatusApproved)
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if _, ok := console.SelectedOrder(); ok {
		t.Error("selection must be cleared when the order is gone")
	}
}

func TestSelection_IsPureState(t *testing.T) {
	store := &fakeStore{orders: []core.Order{pendingOrder(7)}}
	console := newTestConsole(store)
	ctx := context.Background()

	if err := console.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := console.SelectOrder(7); err != nil {
		t.Fatalf("select: %v", err)
	}
	order, ok := console.SelectedOrder()
	if !ok || order.ID != 7 {
		t.Fatalf("selected = %+v, ok=%v", order, ok)
	}

	// Mutating the returned copy must not leak into console state.
	order.Status = core.StatusCancelled
	again, _ := console.SelectedOrder()
	if again.Status != core.StatusPending {
		t.Error("SelectedOrder must return a copy")
	}

	console.ClearSelection()
	if _, ok := console.SelectedOrder(); ok {
		t.Error("ClearSelection must drop the focus")
	}

	if err := console.SelectOrder(99); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("selecting an unloaded order must fail with not_found, got %v", err)
	}
}

func TestRefreshReports_LocalAggregation(t *testing.T) {
	store := &fakeStore{
		orders: []core.Order{pendingOrder(7)},
		inventory: []core.InventoryRecord{
			{ProductTitle: "A", StockQuantity: 0},
			{ProductTitle: "B", StockQuantity: 5},
		},
	}
	console := newTestConsole(store)

	if err := console.RefreshReports(context.Background()); err != nil {
		t.Fatalf("RefreshReports failed: %v", err)
	}

	stock := console.Report(core.ReportStockLevels)
	if stock == nil {
		t.Fatal("stock-levels series missing")
	}
	if len(stock.Labels) != 2 || !stock.Datasets[0].Values[0].IsZero() {
		t.Errorf("stockout must be visible: %+v", stock)
	}

	for _, kind := range core.ReportKinds() {
		if console.Report(kind) == nil {
			t.Errorf("report %s not computed", kind)
		}
	}
}

func TestRefreshReports_RemoteSource(t *testing.T) {
	store := &fakeStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	console := app.NewConsole(store, core.NewAggregator("", 0), app.ReportSourceRemote, log, nil)

	if err := console.RefreshReports(context.Background()); err != nil {
		t.Fatalf("RefreshReports failed: %v", err)
	}

	series := console.Report(core.ReportBestSellers)
	if series == nil || series.Datasets[0].Label != "remote" {
		t.Fatalf("remote series = %+v", series)
	}
}

func TestReport_ReturnsACopy(t *testing.T) {
	store := &fakeStore{inventory: []core.InventoryRecord{{ProductTitle: "A", StockQuantity: 3}}}
	console := newTestConsole(store)

	if err := console.RefreshReports(context.Background()); err != nil {
		t.Fatalf("RefreshReports failed: %v", err)
	}

	series := console.Report(core.ReportStockLevels)
	series.Labels[0] = "tampered"

	if console.Report(core.ReportStockLevels).Labels[0] != "A" {
		t.Error("Report must return a defensive copy")
	}
}
