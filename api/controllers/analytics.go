package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/internal/analytics"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

// AnalyticsDashboard aggregates revenue, top products, and supplier
// commissions over one range.
func AnalyticsDashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

func AnalyticsRevenue(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		points, err := svc.RevenueByDay(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"revenue": points})
	}
}

func AnalyticsTopProducts(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.TopProducts(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

func AnalyticsCommissions(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		commissions, err := svc.CommissionBySupplier(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"commissions": commissions})
	}
}

// parseRange accepts from/to as RFC 3339 timestamps or plain dates. Blank
// values fall back to the service defaults.
func parseRange(r *http.Request) (analytics.Range, error) {
	var rng analytics.Range

	from, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		return rng, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from")
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		return rng, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to")
	}

	rng.From = from
	rng.To = to
	return rng, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}
