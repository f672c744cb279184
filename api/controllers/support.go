package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/api/validators"
	"github.com/mamadoubah/nimbashop-backend/internal/support"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

type openTicketRequest struct {
	OrderID     *uuid.UUID `json:"order_id"`
	Subject     string     `json:"subject" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required"`
	Priority    *string    `json:"priority"`
}

// SupportOpenTicket opens a new ticket for the caller.
func SupportOpenTicket(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload openTicketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category := enums.TicketCategory(payload.Category)
		if !category.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
			return
		}

		input := support.OpenTicketInput{
			CustomerID:  customerID,
			OrderID:     payload.OrderID,
			Subject:     validators.SanitizeString(payload.Subject, 200),
			Description: validators.SanitizeString(payload.Description, 2000),
			Category:    category,
		}
		if payload.Priority != nil {
			priority := enums.TicketPriority(*payload.Priority)
			if !priority.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority"))
				return
			}
			input.Priority = priority
		}

		dto, err := svc.OpenTicket(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MyTickets lists the caller's own tickets.
func MyTickets(svc support.Service, logg *logger.Logger) http.HandlerFunc {
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

		responses.WriteSuccess(w, map[string]any{"tickets": rows})
	}
}

// SupportTicketDetail returns a ticket thread. Customers only see their own
// tickets and never the internal notes.
func SupportTicketDetail(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var scope *uuid.UUID
		if !isManager(r) {
			scope = &actor
		}

		dto, err := svc.GetTicket(r.Context(), ticketID, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

type ticketReplyRequest struct {
	Message    string `json:"message" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// SupportReply appends a message to a ticket thread. Internal notes are a
// manager-only facility.
func SupportReply(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ticketReplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.IsInternal && !isManager(r) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "internal notes are manager only"))
			return
		}

		dto, err := svc.Reply(r.Context(), support.ReplyInput{
			TicketID:   ticketID,
			AuthorID:   actor,
			Message:    validators.SanitizeString(payload.Message, 2000),
			IsInternal: payload.IsInternal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// ManagerTickets lists tickets across all customers with optional filters.
func ManagerTickets(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters support.ListFilters

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseTicketStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category := enums.TicketCategory(raw)
			if !category.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
				return
			}
			filters.Category = &category
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
			priority := enums.TicketPriority(raw)
			if !priority.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority"))
				return
			}
			filters.Priority = &priority
		}

		rows, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"tickets": rows})
	}
}

type ticketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func SupportTicketStatus(svc support.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ticketStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseTicketStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		dto, err := svc.UpdateStatus(r.Context(), support.UpdateStatusInput{
			TicketID: ticketID,
			Status:   status,
			ActorID:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "ticket.status_updated", "support_ticket", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}

type ticketAssignRequest struct {
	AssignedTo uuid.UUID `json:"assigned_to" validate:"required"`
}

func SupportTicketAssign(svc support.Service, auditSvc auditRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ticketAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Assign(r.Context(), support.AssignInput{
			TicketID:   ticketID,
			AssignedTo: payload.AssignedTo,
			ActorID:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordAudit(r, auditSvc, actor, "ticket.assigned", "support_ticket", dto.ID)
		responses.WriteSuccess(w, dto)
	}
}
