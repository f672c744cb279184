package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

// Service records audited actions and security events and exposes
// manager-facing listings of both.
type Service interface {
	Record(ctx context.Context, input RecordInput) error
	RecordSecurityEvent(ctx context.Context, input SecurityEventInput) error
	ListLogs(ctx context.Context, filters LogFilters, p pagination.Params) (*LogPage, error)
	ListSecurityEvents(ctx context.Context, filters EventFilters, p pagination.Params) (*EventPage, error)
}

// LogPage is one page of audit log rows.
type LogPage struct {
	Logs       []LogDTO `json:"logs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// EventPage is one page of security events.
type EventPage struct {
	Events     []EventDTO `json:"events"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService builds the audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) error {
	if strings.TrimSpace(input.Action) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "action required")
	}
	if strings.TrimSpace(input.EntityType) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "entity type required")
	}

	log := &models.AuditLog{
		ActorID:    input.ActorID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Metadata:   input.Metadata,
		IPAddress:  input.IPAddress,
	}
	if _, err := s.repo.CreateLog(ctx, log); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create audit log")
	}
	return nil
}

func (s *service) RecordSecurityEvent(ctx context.Context, input SecurityEventInput) error {
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown security event type")
	}
	if strings.TrimSpace(input.IPAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "ip address required")
	}

	event := &models.SecurityEvent{
		Type:      input.Type,
		UserID:    input.UserID,
		Email:     input.Email,
		IPAddress: input.IPAddress,
		Path:      input.Path,
		Detail:    input.Detail,
	}
	if _, err := s.repo.CreateEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create security event")
	}
	return nil
}

func (s *service) ListLogs(ctx context.Context, filters LogFilters, p pagination.Params) (*LogPage, error) {
	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(p.Limit)

	rows, err := s.repo.ListLogs(ctx, filters, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit logs")
	}

	page := &LogPage{}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for i := range rows {
		page.Logs = append(page.Logs, toLogDTO(&rows[i]))
	}
	return page, nil
}

func (s *service) ListSecurityEvents(ctx context.Context, filters EventFilters, p pagination.Params) (*EventPage, error) {
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown security event type")
	}
	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(p.Limit)

	rows, err := s.repo.ListEvents(ctx, filters, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list security events")
	}

	page := &EventPage{}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for i := range rows {
		page.Events = append(page.Events, toEventDTO(&rows[i]))
	}
	return page, nil
}

func toLogDTO(log *models.AuditLog) LogDTO {
	return LogDTO{
		ID:         log.ID,
		ActorID:    log.ActorID,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Metadata:   log.Metadata,
		IPAddress:  log.IPAddress,
		CreatedAt:  log.CreatedAt,
	}
}

func toEventDTO(event *models.SecurityEvent) EventDTO {
	return EventDTO{
		ID:        event.ID,
		Type:      event.Type,
		UserID:    event.UserID,
		Email:     event.Email,
		IPAddress: event.IPAddress,
		Path:      event.Path,
		Detail:    event.Detail,
		CreatedAt: event.CreatedAt,
	}
}
