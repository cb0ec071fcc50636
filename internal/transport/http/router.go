package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zonegate/internal/platform/middleware"
	"zonegate/internal/zone"
	"zonegate/pkg/platform/httputil"
	"zonegate/pkg/requestcontext"
)

// Register wires the token-facing endpoints onto the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Get("/auth/session", h.handleGetSession)
	r.Post("/auth/refresh", h.handleRefresh)
}

// NewRouter assembles the public surface: the mobile bridge endpoints, the
// zone-gated web entry points, and the operational endpoints. Page rendering
// behind the web entries belongs to the UI layer; the handlers here only
// confirm entry so layouts can be mounted on top.
func NewRouter(h *AuthHandler, gate *middleware.ZoneGate) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	h.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(gate.Require(zone.ZoneAuth))
		r.Get("/login", zoneEntry(zone.ZoneAuth))
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Require(zone.ZoneOnboarding))
		r.Get("/onboarding", zoneEntry(zone.ZoneOnboarding))
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Require(zone.ZoneAdmin))
		r.Get("/admin", zoneEntry(zone.ZoneAdmin))
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Require(zone.ZoneApp))
		r.Get("/", zoneEntry(zone.ZoneApp))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func zoneEntry(z zone.Zone) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"zone": string(z)}
		if ident := requestcontext.Identity(r.Context()); ident != nil {
			body["userId"] = ident.ID.String()
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}
