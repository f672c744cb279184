package controllers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/internal/payments"
	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
	"github.com/mamadoubah/nimbashop-backend/pkg/pdf"
)

type mobileMoneyRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Phone   string    `json:"phone" validate:"required"`
	TxnID   string    `json:"transaction_id" validate:"required"`
}

// PaymentMobileMoney confirms a mobile money settlement for an order.
func PaymentMobileMoney(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload mobileMoneyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.ConfirmMobileMoney(r.Context(), payments.MobileMoneyInput{
			OrderID: payload.OrderID,
			Phone:   payload.Phone,
			TxnID:   payload.TxnID,
			ActorID: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type cardPaymentRequest struct {
	OrderID    uuid.UUID `json:"order_id" validate:"required"`
	CardNumber string    `json:"card_number" validate:"required"`
	Brand      string    `json:"brand" validate:"required"`
}

// PaymentCard confirms a card settlement. Only the brand and the last four
// digits survive past this handler.
func PaymentCard(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cardPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.ConfirmCard(r.Context(), payments.CardInput{
			OrderID:    payload.OrderID,
			CardNumber: payload.CardNumber,
			Brand:      payload.Brand,
			ActorID:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type cashPaymentRequest struct {
	OrderID      uuid.UUID       `json:"order_id" validate:"required"`
	CashReceived decimal.Decimal `json:"cash_received" validate:"required"`
}

// ManagerPaymentCash settles a cash-on-delivery order at the counter.
func ManagerPaymentCash(svc payments.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cashPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.ConfirmCash(r.Context(), payments.CashInput{
			OrderID:      payload.OrderID,
			CashReceived: payload.CashReceived,
			ConfirmedBy:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "payment.cash_confirmed", "order", receipt.OrderID)
		responses.WriteSuccess(w, receipt)
	}
}

// OrderPayments lists the payment attempts recorded against an order.
func OrderPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListForOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"payments": rows})
	}
}

// PaymentReceipt renders a paid order's receipt as a PDF download.
func PaymentReceipt(orderSvc orders.Service, paySvc payments.Service, users userLoader, company config.CompanyConfig, delivery config.DeliveryConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto *orders.OrderDTO
		if isManager(r) {
			dto, err = orderSvc.Get(r.Context(), orderID)
		} else {
			dto, err = orderSvc.GetForCustomer(r.Context(), orderID, actor)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if dto.PaidAt == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid"))
			return
		}

		reference := ""
		if rows, err := paySvc.ListForOrder(r.Context(), dto.ID); err == nil {
			for _, row := range rows {
				if row.Status != enums.PaymentStateCompleted {
					continue
				}
				if row.MobileMoneyTxnID != nil {
					reference = *row.MobileMoneyTxnID
				} else if row.CardLastFour != nil {
					reference = "****" + *row.CardLastFour
				}
			}
		}

		doc, err := pdf.Receipt(pdf.ReceiptData{
			Company:      pdf.CompanyInfo{Name: company.Name, Address: company.Address, Phone: company.Phone},
			OrderNumber:  dto.OrderNumber,
			CustomerName: customerName(r.Context(), users, dto.CustomerID),
			PaidAt:       *dto.PaidAt,
			Amount:       dto.PaidAmount,
			Method:       string(dto.PaymentMethod),
			Reference:    reference,
			Currency:     delivery.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt"))
			return
		}

		writePDF(w, fmt.Sprintf("recu-%s.pdf", dto.OrderNumber), doc)
	}
}
