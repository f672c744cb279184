package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/api/responses"
	"github.com/mamadoubah/nimbashop-backend/internal/audit"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

// auditRecorder is the slice of the audit service mutation handlers use to
// leave a trail. Recording is best effort and never fails the request.
type auditRecorder interface {
	Record(ctx context.Context, input audit.RecordInput) error
}

func recordAudit(r *http.Request, rec auditRecorder, actor uuid.UUID, action, entityType string, entityID uuid.UUID) {
	if rec == nil {
		return
	}
	ip := clientIP(r)
	_ = rec.Record(r.Context(), audit.RecordInput{
		ActorID:    &actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		IPAddress:  &ip,
	})
}

// AuditLogList pages through the audit trail with optional filters.
func AuditLogList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters audit.LogFilters

		actor, err := queryUUID(r, "actor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.ActorID = actor

		entity, err := queryUUID(r, "entity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.EntityID = entity

		if raw := strings.TrimSpace(r.URL.Query().Get("entity_type")); raw != "" {
			filters.EntityType = &raw
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			filters.Action = &raw
		}

		page, err := svc.ListLogs(r.Context(), filters, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// SecurityEventList pages through recorded security events.
func SecurityEventList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters audit.EventFilters

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			kind := enums.SecurityEventType(raw)
			if !kind.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid type"))
				return
			}
			filters.Type = &kind
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("email")); raw != "" {
			lowered := strings.ToLower(raw)
			filters.Email = &lowered
		}

		page, err := svc.ListSecurityEvents(r.Context(), filters, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
