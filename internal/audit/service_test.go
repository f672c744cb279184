package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type stubAuditRepo struct {
	logs   []models.AuditLog
	events []models.SecurityEvent
}

func (s *stubAuditRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAuditRepo) CreateLog(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	s.logs = append(s.logs, *log)
	return log, nil
}

func (s *stubAuditRepo) ListLogs(ctx context.Context, filters LogFilters, cursor *pagination.Cursor, limit int) ([]models.AuditLog, error) {
	if len(s.logs) > limit {
		return s.logs[:limit], nil
	}
	return s.logs, nil
}

func (s *stubAuditRepo) CreateEvent(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.events = append(s.events, *event)
	return event, nil
}

func (s *stubAuditRepo) ListEvents(ctx context.Context, filters EventFilters, cursor *pagination.Cursor, limit int) ([]models.SecurityEvent, error) {
	if len(s.events) > limit {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func TestRecordRequiresAction(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.Record(context.Background(), RecordInput{EntityType: "order"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.logs) != 0 {
		t.Fatal("expected no log written")
	}
}

func TestRecordSecurityEventRejectsUnknownType(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.RecordSecurityEvent(context.Background(), SecurityEventInput{
		Type:      enums.SecurityEventType("sql_injection"),
		IPAddress: "10.0.0.1",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListLogsPaginates(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := svc.Record(context.Background(), RecordInput{
			Action:     "supplier.verify",
			EntityType: "supplier",
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	page, err := svc.ListLogs(context.Background(), LogFilters{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(page.Logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(page.Logs))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}
}
