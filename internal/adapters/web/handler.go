// Package web serves the operator console as a JSON API: the orders table,
// order detail, status transitions, and the dashboard report series. The
// presentation layer (whatever renders the charts and tables) is a separate
// concern consuming these endpoints.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookstore-console/internal/app"
	"bookstore-console/internal/apperr"
	"bookstore-console/internal/core"
	"bookstore-console/internal/metrics"
)

type Handler struct {
	console *app.Console
	log     *slog.Logger
	router  chi.Router
}

func NewHandler(console *app.Console, log *slog.Logger, allowedOrigins string) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{console: console, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.orderDetail)
		r.Post("/orders/{id}/status", h.updateStatus)
		r.Post("/refresh", h.refresh)
		r.Get("/reports/{kind}", h.report)
		r.Get("/notifications", h.notifications)
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// listOrders handles GET /api/orders[?status=Pending].
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter core.Status
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := core.ParseStatus(s)
		if err != nil {
			writeError(w, r, err.Error(), string(apperr.Invalid), http.StatusBadRequest)
			return
		}
		filter = parsed
	}

	snap := h.console.Snapshot()
	writeJSON(w, map[string]any{
		"rows":       app.Rows(snap, filter),
		"loading":    snap.Loading,
		"last_error": snap.LastError,
		"updated_at": snap.UpdatedAt,
	})
}

// orderDetail handles GET /api/orders/{id}. The detail is built from the
// already-loaded list snapshot; it never re-fetches from the store.
func (h *Handler) orderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "order id must be an integer", string(apperr.Invalid), http.StatusBadRequest)
		return
	}

	if err := h.console.SelectOrder(id); err != nil {
		writeAppError(w, r, err)
		return
	}
	order, ok := h.console.SelectedOrder()
	if !ok {
		writeError(w, r, "order not loaded", string(apperr.NotFound), http.StatusNotFound)
		return
	}
	writeJSON(w, app.BuildOrderDetail(*order))
}

type statusUpdateBody struct {
	Status string `json:"status"`
}

// updateStatus handles POST /api/orders/{id}/status.
func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "order id must be an integer", string(apperr.Invalid), http.StatusBadRequest)
		return
	}

	var body statusUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "request body must be JSON with a status field", string(apperr.Invalid), http.StatusBadRequest)
		return
	}
	to, err := core.ParseStatus(body.Status)
	if err != nil {
		writeError(w, r, err.Error(), string(apperr.Invalid), http.StatusBadRequest)
		return
	}

	updated, err := h.console.RequestTransition(r.Context(), id, to)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, app.BuildOrderDetail(*updated))
}

// refresh handles POST /api/refresh. It re-pulls orders and reports.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ordersErr := h.console.RefreshOrders(r.Context())
	reportsErr := h.console.RefreshReports(r.Context())
	if ordersErr != nil {
		writeAppError(w, r, ordersErr)
		return
	}
	if reportsErr != nil {
		writeAppError(w, r, reportsErr)
		return
	}
	writeJSON(w, map[string]string{"status": "refreshed"})
}

// report handles GET /api/reports/{kind}.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseReportKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err.Error(), string(apperr.Invalid), http.StatusBadRequest)
		return
	}

	series := h.console.Report(kind)
	if series == nil {
		writeError(w, r, "report not computed yet; POST /api/refresh first", string(apperr.NotFound), http.StatusNotFound)
		return
	}
	writeJSON(w, series)
}

// notifications handles GET /api/notifications. It drains pending notices.
func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	notices := h.console.Notifications()
	if notices == nil {
		notices = []app.Notice{}
	}
	writeJSON(w, notices)
}
