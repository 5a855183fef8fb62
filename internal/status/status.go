// Package status exposes mangavault's control/introspection HTTP surface:
// health, Prometheus metrics, account listing, login, catalog search and
// the purchase/precalculate operations — everything the CLI's "external
// collaborator" layer needs to drive the core without linking against it
// directly. Built on the same chi/cors/render stack, request-ID and
// recoverer middleware the teacher repo's router already used.
package status

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	chiprometheus "github.com/766b/chi-prometheus"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"mangavault/internal/account"
	"mangavault/internal/analytics"
	"mangavault/internal/batch"
	"mangavault/internal/dispatch"
	"mangavault/internal/ledger"
	verrors "mangavault/pkg/errors"
	"mangavault/pkg/server/response"
	"mangavault/pkg/server/router"
	serverstatus "mangavault/pkg/server/status"
)

// buildVersion is overridden at link time via -ldflags
// "-X mangavault/internal/status.buildVersion=...".
var buildVersion = "dev"

var errVendorMismatch = verrors.ErrValidation.WithDetails("reason", "account vendor does not match route vendor")

// Deps bundles everything a handler needs: the credential store plus the
// batch loop's optional collaborators, shared across every purchase
// request. ClickHouse and the ledger are carried as raw connections
// rather than pre-bound batch.AnalyticsSink values, because each request
// needs a sink scoped to that request's own account/vendor (see
// analyticsSinkFor) — a single shared sink would record every request
// under whichever vendor happened to configure it first.
type Deps struct {
	Store             account.Store
	Events            batch.EventPublisher
	Metrics           *batch.Metrics
	Logger            *zap.Logger
	VendorHTTPTimeout time.Duration
	LedgerPool        *pgxpool.Pool
	ClickHouseDB      *sql.DB
	Backends          response.Backends
}

// analyticsSinkFor builds the fanout sink for one account's purchase run,
// scoped to that account's ID and vendor.
func (d Deps) analyticsSinkFor(acc account.Account) batch.AnalyticsSink {
	var fanout batch.FanoutSink
	if d.ClickHouseDB != nil {
		fanout = append(fanout, analytics.New(d.ClickHouseDB, acc.Vendor))
	}
	if d.LedgerPool != nil {
		fanout = append(fanout, ledger.NewAccountSink(ledger.New(d.LedgerPool), acc.ID, acc.Vendor))
	}
	return fanout
}

// NewRouter builds the full chi mux: the teacher's base middleware stack
// (request ID, recoverer, CORS, JSON content type), a Prometheus
// middleware recording request counts/latencies per route, then this
// package's own handlers. The whole thing is wrapped in an otelhttp
// handler at the call site (see Handler) so every request carries a span.
func NewRouter(deps Deps) *chi.Mux {
	r := router.New("/healthz", "/metrics")
	r.Use(chiprometheus.NewMiddleware("mangavault"))

	r.Get("/healthz", deps.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/accounts/{vendor}", func(vr chi.Router) {
		vr.Get("/", deps.handleListAccounts)
		vr.Post("/login", deps.handleLogin)
		vr.Get("/{id}", deps.handleGetAccount)
		vr.Delete("/{id}", deps.handleDeleteAccount)
	})

	r.Get("/catalog/{vendor}/{accountID}", deps.handleCatalog)
	r.Post("/precalculate", deps.handlePrecalculate)
	r.Post("/purchase", deps.handlePurchase)

	return r
}

// Handler wraps NewRouter's mux in an OpenTelemetry HTTP handler, so every
// request is traced end to end (vendor HTTP calls made during the request
// inherit the span via context).
func Handler(deps Deps) http.Handler {
	return otelhttp.NewHandler(NewRouter(deps), "mangavault.status")
}

func (d Deps) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := response.Health(r.Context(), buildVersion, d.Backends)
	render.Render(w, r, ptr(serverstatus.OK(health)))
}

func (d Deps) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	vendor := chi.URLParam(r, "vendor")
	accs, err := d.Store.List(r.Context(), vendor)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(accs)))
}

func (d Deps) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	acc, err := d.Store.Get(r.Context(), id)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(acc)))
}

func (d Deps) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := d.Store.Delete(r.Context(), id); err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(nil)))
}

type loginRequest struct {
	DeviceTag string `json:"device_tag"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (d Deps) handleLogin(w http.ResponseWriter, r *http.Request) {
	vendor := chi.URLParam(r, "vendor")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Render(w, r, ptr(serverstatus.BadRequest(err, nil)))
		return
	}

	acc, err := dispatch.Login(r.Context(), d.Store, vendor, req.DeviceTag, req.Email, req.Password)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(acc)))
}

func (d Deps) handleCatalog(w http.ResponseWriter, r *http.Request) {
	vendor := chi.URLParam(r, "vendor")
	accountID := chi.URLParam(r, "accountID")
	query := r.URL.Query().Get("q")

	acc, err := d.Store.Get(r.Context(), accountID)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	if acc.Vendor != vendor {
		d.renderErr(w, r, errVendorMismatch)
		return
	}

	titles, err := dispatch.Catalog(r.Context(), d.Store, acc, query)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(titles)))
}

type selectionRequest struct {
	AccountID  string   `json:"account_id"`
	TitleID    string   `json:"title_id"`
	ChapterIDs []string `json:"chapter_ids"`
}

func (d Deps) handlePrecalculate(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Render(w, r, ptr(serverstatus.BadRequest(err, nil)))
		return
	}

	acc, err := d.Store.Get(r.Context(), req.AccountID)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}

	plans, err := dispatch.Precalculate(r.Context(), d.Store, acc, req.TitleID, req.ChapterIDs)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(plans)))
}

func (d Deps) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Render(w, r, ptr(serverstatus.BadRequest(err, nil)))
		return
	}

	acc, err := d.Store.Get(r.Context(), req.AccountID)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.vendorTimeout())
	defer cancel()

	summary, err := dispatch.PurchaseAndDownload(ctx, batch.Deps{
		Events:    d.Events,
		Analytics: d.analyticsSinkFor(acc),
		Metrics:   d.Metrics,
		Logger:    d.Logger,
	}, d.Store, acc, req.TitleID, req.ChapterIDs)
	if err != nil {
		d.renderErr(w, r, err)
		return
	}
	render.Render(w, r, ptr(serverstatus.OK(summary)))
}

func (d Deps) vendorTimeout() time.Duration {
	if d.VendorHTTPTimeout <= 0 {
		return 30 * time.Second
	}
	return d.VendorHTTPTimeout
}

func ptr(r serverstatus.Response) *serverstatus.Response { return &r }

// renderErr maps a domain error (mangavault/pkg/errors) onto the shared
// Response envelope using its carried HTTP status rather than collapsing
// everything to 500, so a caller can tell a bad request apart from an
// upstream vendor failure.
func (d Deps) renderErr(w http.ResponseWriter, r *http.Request, err error) {
	resp := serverstatus.Response{
		Status:  verrors.GetHTTPStatus(err),
		Success: false,
		Message: err.Error(),
	}
	render.Render(w, r, &resp)
}
