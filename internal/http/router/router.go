package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldworks/service-scheduling/internal/http/handlers"
	mw "github.com/fieldworks/service-scheduling/internal/http/middleware"
	"github.com/fieldworks/service-scheduling/internal/http/middleware/ratelimit"
	"github.com/fieldworks/service-scheduling/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
// The rate limiter applies only to the public offer-response endpoint;
// staff routes sit behind the office network and are not limited here.
func New(
	logger logx.Logger,
	base *handlers.Handlers,
	rec *handlers.RecommendHandler,
	off *handlers.OfferHandler,
	book *handlers.BookingHandler,
	status *handlers.StatusHandler,
	publicLimit *ratelimit.Middleware,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Observability(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/jobs/{id}/recommendations", rec.Recommendations)
	r.Post("/offers", off.Create)
	r.Post("/offers/{id}/resend", off.Resend)
	r.Post("/bookings/confirm", book.Confirm)
	r.Get("/status/counts", status.Counts)

	r.Group(func(g chi.Router) {
		if publicLimit != nil {
			g.Use(publicLimit.Handler())
		}
		g.Post("/offer-response/{token}", off.Respond)
	})

	r.NotFound(http.HandlerFunc(base.NotFound))

	return r
}
