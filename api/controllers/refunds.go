package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	"github.com/mamadoubah/nimbashop-backend/internal/refunds"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

type refundRequestPayload struct {
	OrderID           uuid.UUID `json:"order_id" validate:"required"`
	Reason            string    `json:"reason" validate:"required"`
	ReasonDescription *string   `json:"reason_description"`
}

// RefundRequest opens a refund for one of the caller's paid orders.
func RefundRequest(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := enums.ParseRefundReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason"))
			return
		}

		dto, err := svc.Request(r.Context(), refunds.RequestInput{
			OrderID:           payload.OrderID,
			RequestedBy:       customerID,
			Reason:            reason,
			ReasonDescription: sanitizeOptional(payload.ReasonDescription, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MyRefunds lists the refunds the caller has requested.
func MyRefunds(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListForCustomer(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"refunds": rows})
	}
}

func RefundDetail(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refundID, err := pathUUID(r, "refundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), refundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !isManager(r) && dto.RequestedBy != actor {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "refund not found"))
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// PendingRefunds lists refunds awaiting a manager decision.
func PendingRefunds(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"refunds": rows})
	}
}

type processRefundRequest struct {
	Approve       *bool   `json:"approve" validate:"required"`
	TransactionID *string `json:"transaction_id"`
}

// RefundProcess settles a pending refund one way or the other.
func RefundProcess(svc refunds.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refundID, err := pathUUID(r, "refundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload processRefundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Process(r.Context(), refunds.ProcessInput{
			RefundID:      refundID,
			ProcessedBy:   actor,
			Approve:       *payload.Approve,
			TransactionID: payload.TransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "refund.processed", "refund", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}
