package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	product "github.com/mamadoubah/nimbashop-backend/internal/products"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

// CatalogProducts lists active products for the storefront.
func CatalogProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Storefront callers only ever see the active catalog.
		active := true
		filters.IsActive = &active

		result, err := svc.ListProducts(r.Context(), product.ListInput{Filters: filters, Pagination: pageParams(r)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func CatalogProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !dto.IsActive && !isManager(r) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func ListCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

// ManagerProducts lists the full catalog, archived products included.
func ManagerProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("is_active")); raw != "" {
			active := raw == "true"
			filters.IsActive = &active
		}

		result, err := svc.ListProducts(r.Context(), product.ListInput{Filters: filters, Pagination: pageParams(r)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	SKU         string           `json:"sku" validate:"required"`
	Barcode     *string          `json:"barcode"`
	Price       decimal.Decimal  `json:"price" validate:"required"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	CategoryID  uuid.UUID        `json:"category_id" validate:"required"`
	WeightKG    *decimal.Decimal `json:"weight_kg"`
	IsActive    *bool            `json:"is_active"`
}

func ProductCreate(svc product.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if payload.IsActive != nil {
			active = *payload.IsActive
		}

		dto, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			SKU:         payload.SKU,
			Barcode:     payload.Barcode,
			Price:       payload.Price,
			CostPrice:   payload.CostPrice,
			CategoryID:  payload.CategoryID,
			WeightKG:    payload.WeightKG,
			IsActive:    active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "product.created", "product", dto.ID)
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Barcode     *string          `json:"barcode"`
	Price       *decimal.Decimal `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	WeightKG    *decimal.Decimal `json:"weight_kg"`
	IsActive    *bool            `json:"is_active"`
}

func ProductUpdate(svc product.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), id, product.UpdateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Barcode:     payload.Barcode,
			Price:       payload.Price,
			CostPrice:   payload.CostPrice,
			CategoryID:  payload.CategoryID,
			WeightKG:    payload.WeightKG,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "product.updated", "product", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func CategoryCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateCategory(r.Context(), product.CreateCategoryInput{Name: payload.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func CategoryDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseProductFilters(r *http.Request) (product.ListFilters, error) {
	var filters product.ListFilters

	categoryID, err := queryUUID(r, "category_id")
	if err != nil {
		return filters, err
	}
	filters.CategoryID = categoryID
	filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	if raw := strings.TrimSpace(r.URL.Query().Get("price_min")); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_min")
		}
		filters.PriceMin = &min
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("price_max")); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_max")
		}
		filters.PriceMax = &max
	}

	return filters, nil
}
