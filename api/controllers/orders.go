package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
	"github.com/mamadoubah/nimbashop-backend/pkg/pdf"
)

// userLoader resolves the customer behind an order for PDF documents.
type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type checkoutRequest struct {
	PaymentMethod   string  `json:"payment_method" validate:"required"`
	DeliveryAddress string  `json:"delivery_address" validate:"required"`
	DeliveryPhone   string  `json:"delivery_phone" validate:"required"`
	DeliveryNotes   *string `json:"delivery_notes"`
}

// OrderCheckout turns the caller's cart into an order.
func OrderCheckout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		dto, err := svc.Checkout(r.Context(), orders.CheckoutInput{
			CustomerID:      customerID,
			PaymentMethod:   method,
			DeliveryAddress: validators.SanitizeString(payload.DeliveryAddress, 500),
			DeliveryPhone:   validators.SanitizeString(payload.DeliveryPhone, 32),
			DeliveryNotes:   sanitizeOptional(payload.DeliveryNotes, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MyOrders lists the caller's own orders.
func MyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListForCustomer(r.Context(), customerID, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func MyOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetForCustomer(r.Context(), orderID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// OrderCancel cancels one of the caller's orders while it is still cancellable.
func OrderCancel(svc orders.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Cancel(r.Context(), orders.CancelInput{
			OrderID:    orderID,
			ActorID:    customerID,
			CustomerID: &customerID,
			Reason:     validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, customerID, "order.cancelled", "order", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

// OrderInvoice renders the order invoice as a PDF download. Customers only
// reach their own orders; managers reach any.
func OrderInvoice(svc orders.Service, users userLoader, company config.CompanyConfig, delivery config.DeliveryConfig, logg *logger.Logger) http.HandlerFunc {
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
			dto, err = svc.Get(r.Context(), orderID)
		} else {
			dto, err = svc.GetForCustomer(r.Context(), orderID, actor)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := pdf.Invoice(invoiceData(dto, customerName(r.Context(), users, dto.CustomerID), company, delivery.Currency))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice"))
			return
		}

		writePDF(w, fmt.Sprintf("facture-%s.pdf", dto.OrderNumber), doc)
	}
}

// ManagerOrders lists all orders with optional status and customer filters.
func ManagerOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input orders.ListInput
		input.Pagination = pageParams(r)

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		customerID, err := queryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.CustomerID = customerID

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func ManagerOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ManagerOrderStatus advances an order through its lifecycle.
func ManagerOrderStatus(svc orders.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		dto, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID: orderID,
			Status:  status,
			ActorID: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "order.status_updated", "order", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

// ManagerOrderCancel cancels any order on behalf of the back office.
func ManagerOrderCancel(svc orders.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
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

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Cancel(r.Context(), orders.CancelInput{
			OrderID: orderID,
			ActorID: actor,
			Reason:  validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "order.cancelled", "order", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

func invoiceData(dto *orders.OrderDTO, customer string, company config.CompanyConfig, currency string) pdf.InvoiceData {
	lines := make([]pdf.InvoiceLine, len(dto.Items))
	for i, item := range dto.Items {
		lines[i] = pdf.InvoiceLine{
			Description: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.PriceAtTime,
			LineTotal:   item.LineTotal,
		}
	}
	return pdf.InvoiceData{
		Company:      pdf.CompanyInfo{Name: company.Name, Address: company.Address, Phone: company.Phone},
		OrderNumber:  dto.OrderNumber,
		CustomerName: customer,
		Address:      dto.DeliveryAddress,
		IssuedAt:     dto.CreatedAt,
		Lines:        lines,
		Subtotal:     dto.Subtotal,
		DeliveryFee:  dto.DeliveryFee,
		Total:        dto.TotalAmount,
		Currency:     currency,
	}
}

func customerName(ctx context.Context, users userLoader, id uuid.UUID) string {
	if users == nil {
		return ""
	}
	user, err := users.FindUser(ctx, id)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
