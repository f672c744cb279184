package controllers

import (
	"net/http"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	"github.com/mamadoubah/nimbashop-backend/internal/stock"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

// ProductAvailability reports combined physical and dropship availability.
func ProductAvailability(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		availability, err := svc.Availability(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, availability)
	}
}

type stockMovementRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Reason   string `json:"reason" validate:"required"`
}

// StockAdd receives physical units into the warehouse.
func StockAdd(svc stock.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, auditSvc, logg, "stock.added", func(r *http.Request, svc stock.Service, input stock.MovementInput) (any, error) {
		return svc.Add(r.Context(), input)
	})
}

// StockRemove takes physical units out for damage or loss.
func StockRemove(svc stock.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, auditSvc, logg, "stock.removed", func(r *http.Request, svc stock.Service, input stock.MovementInput) (any, error) {
		return svc.Remove(r.Context(), input)
	})
}

func stockMovement(svc stock.Service, auditSvc auditRecorder, logg *logger.Logger, action string, apply func(*http.Request, stock.Service, stock.MovementInput) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := apply(r, svc, stock.MovementInput{
			ProductID: productID,
			Quantity:  payload.Quantity,
			Reason:    validators.SanitizeString(payload.Reason, 500),
			ActorID:   &actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, action, "stock", productID)
		responses.WriteSuccess(w, result)
	}
}

type stockAdjustRequest struct {
	NewQty int    `json:"new_qty" validate:"min=0"`
	Reason string `json:"reason" validate:"required"`
}

// StockAdjust sets the physical quantity after an inventory count.
func StockAdjust(svc stock.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Adjust(r.Context(), stock.AdjustInput{
			ProductID: productID,
			NewQty:    payload.NewQty,
			Reason:    validators.SanitizeString(payload.Reason, 500),
			ActorID:   &actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "stock.adjusted", "stock", productID)
		responses.WriteSuccess(w, record)
	}
}

// StockMovements lists the most recent movements for one product.
func StockMovements(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.Movements(r.Context(), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"movements": movements})
	}
}

// LowStock lists products at or below their reorder threshold.
func LowStock(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"stocks": rows})
	}
}
