package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	"github.com/mamadoubah/nimbashop-backend/internal/suppliers"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

type createSupplierRequest struct {
	Name          string           `json:"name" validate:"required"`
	CompanyName   *string          `json:"company_name"`
	ContactPerson *string          `json:"contact_person"`
	Email         string           `json:"email" validate:"required,email"`
	Phone         *string          `json:"phone"`
	Address       *string          `json:"address"`
	Country       string           `json:"country"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
	Notes         *string          `json:"notes"`
}

func SupplierCreate(svc suppliers.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSupplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creditLimit := decimal.Zero
		if payload.CreditLimit != nil {
			creditLimit = *payload.CreditLimit
		}

		dto, err := svc.Create(r.Context(), suppliers.CreateSupplierInput{
			Name:          payload.Name,
			CompanyName:   payload.CompanyName,
			ContactPerson: payload.ContactPerson,
			Email:         payload.Email,
			Phone:         payload.Phone,
			Address:       payload.Address,
			Country:       payload.Country,
			CreditLimit:   creditLimit,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "supplier.created", "supplier", dto.ID)
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type updateSupplierRequest struct {
	Name          *string          `json:"name"`
	CompanyName   *string          `json:"company_name"`
	ContactPerson *string          `json:"contact_person"`
	Email         *string          `json:"email"`
	Phone         *string          `json:"phone"`
	Address       *string          `json:"address"`
	Country       *string          `json:"country"`
	Status        *string          `json:"status"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
	Notes         *string          `json:"notes"`
}

func SupplierUpdate(svc suppliers.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSupplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := suppliers.UpdateSupplierInput{
			Name:          payload.Name,
			CompanyName:   payload.CompanyName,
			ContactPerson: payload.ContactPerson,
			Email:         payload.Email,
			Phone:         payload.Phone,
			Address:       payload.Address,
			Country:       payload.Country,
			CreditLimit:   payload.CreditLimit,
			Notes:         payload.Notes,
		}
		if payload.Status != nil {
			status, err := enums.ParseSupplierStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		dto, err := svc.Update(r.Context(), supplierID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "supplier.updated", "supplier", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

func SupplierDetail(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func SupplierList(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.SupplierStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseSupplierStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		rows, next, err := svc.List(r.Context(), status, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"suppliers": rows, "next_cursor": next})
	}
}

// SupplierVerify marks a supplier as vetted by the acting manager.
func SupplierVerify(svc suppliers.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Verify(r.Context(), suppliers.VerifyInput{SupplierID: supplierID, VerifiedBy: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "supplier.verified", "supplier", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

type createListingRequest struct {
	ProductID        uuid.UUID       `json:"product_id" validate:"required"`
	SupplierPrice    decimal.Decimal `json:"supplier_price" validate:"required"`
	SellingPrice     decimal.Decimal `json:"selling_price" validate:"required"`
	VirtualStock     int             `json:"virtual_stock" validate:"min=0"`
	MinOrderQty      int             `json:"min_order_qty" validate:"min=0"`
	DeliveryDays     int             `json:"delivery_days" validate:"min=0"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	ReorderThreshold int             `json:"reorder_threshold" validate:"min=0"`
	SupplierSKU      *string         `json:"supplier_sku"`
}

// ListingCreate puts a supplier's product on sale as virtual stock.
func ListingCreate(svc suppliers.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateListing(r.Context(), suppliers.CreateListingInput{
			SupplierID:       supplierID,
			ProductID:        payload.ProductID,
			SupplierPrice:    payload.SupplierPrice,
			SellingPrice:     payload.SellingPrice,
			VirtualStock:     payload.VirtualStock,
			MinOrderQty:      payload.MinOrderQty,
			DeliveryDays:     payload.DeliveryDays,
			ShippingCost:     payload.ShippingCost,
			ReorderThreshold: payload.ReorderThreshold,
			SupplierSKU:      payload.SupplierSKU,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "listing.created", "dropship_product", dto.ID)
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type updateListingRequest struct {
	SupplierPrice    *decimal.Decimal `json:"supplier_price"`
	SellingPrice     *decimal.Decimal `json:"selling_price"`
	VirtualStock     *int             `json:"virtual_stock"`
	MinOrderQty      *int             `json:"min_order_qty"`
	DeliveryDays     *int             `json:"delivery_days"`
	ShippingCost     *decimal.Decimal `json:"shipping_cost"`
	IsActive         *bool            `json:"is_active"`
	ReorderThreshold *int             `json:"reorder_threshold"`
	SupplierSKU      *string          `json:"supplier_sku"`
}

func ListingUpdate(svc suppliers.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateListing(r.Context(), listingID, suppliers.UpdateListingInput{
			SupplierPrice:    payload.SupplierPrice,
			SellingPrice:     payload.SellingPrice,
			VirtualStock:     payload.VirtualStock,
			MinOrderQty:      payload.MinOrderQty,
			DeliveryDays:     payload.DeliveryDays,
			ShippingCost:     payload.ShippingCost,
			IsActive:         payload.IsActive,
			ReorderThreshold: payload.ReorderThreshold,
			SupplierSKU:      payload.SupplierSKU,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "listing.updated", "dropship_product", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

func SupplierListings(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListListings(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"listings": rows})
	}
}

// SupplierLedger aggregates a supplier's dropship sales performance.
func SupplierLedger(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Ledger(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

func SupplierSales(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := pathUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListSales(r.Context(), supplierID, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sales": rows, "next_cursor": next})
	}
}

type saleStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"tracking_number"`
}

// SupplierSaleStatus advances one dropship sale through its lifecycle.
func SupplierSaleStatus(svc suppliers.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := pathUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload saleStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseSupplierSaleStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if err := svc.UpdateSaleStatus(r.Context(), suppliers.UpdateSaleStatusInput{
			SaleID:         saleID,
			Status:         status,
			TrackingNumber: payload.TrackingNumber,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "supplier_sale.status_updated", "supplier_sale", saleID)
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}
