package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/mailer"
	"github.com/mamadoubah/nimbashop-backend/pkg/metrics"
)

const defaultListLimit = 50

// Service handles in-app notifications and the low-stock scan.
type Service interface {
	Push(ctx context.Context, input PushInput) (*NotificationDTO, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	ScanLowStock(ctx context.Context) ([]LowStockProduct, error)
}

type service struct {
	repo     Repository
	mail     mailer.Sender
	commerce *metrics.CommerceMetrics
}

// NewService builds the notifications service. Mailer and metrics are optional.
func NewService(repo Repository, mail mailer.Sender, commerce *metrics.CommerceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo, mail: mail, commerce: commerce}, nil
}

func (s *service) Push(ctx context.Context, input PushInput) (*NotificationDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	notification := &models.Notification{
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    strings.TrimSpace(input.Title),
		Message:  strings.TrimSpace(input.Message),
		EntityID: input.EntityID,
	}
	if _, err := s.repo.CreateNotification(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return toNotificationDTO(notification), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, err := s.repo.ListByUser(ctx, userID, unreadOnly, defaultListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}

	out := &ListResult{
		Notifications: make([]NotificationDTO, 0, len(rows)),
		UnreadCount:   unread,
	}
	for i := range rows {
		out.Notifications = append(out.Notifications, *toNotificationDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error) {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and notification ids required")
	}

	notification, err := s.repo.FindNotificationForUser(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if notification.ReadAt == nil {
		now := time.Now().UTC()
		notification.ReadAt = &now
		if err := s.repo.MarkRead(ctx, notification); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
		}
	}
	return toNotificationDTO(notification), nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return nil
}

// ScanLowStock flags every product whose physical stock fell to its minimum
// or whose dropship listings fell to their reorder threshold. Each manager
// gets at most one unread notification per flagged product.
func (s *service) ScanLowStock(ctx context.Context) ([]LowStockProduct, error) {
	physical, err := s.repo.FindLowPhysicalStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan physical stock")
	}
	virtual, err := s.repo.FindLowVirtualStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan dropship stock")
	}

	seen := make(map[uuid.UUID]bool, len(physical)+len(virtual))
	flagged := make([]LowStockProduct, 0, len(physical)+len(virtual))
	for _, row := range append(physical, virtual...) {
		if seen[row.ProductID] {
			continue
		}
		seen[row.ProductID] = true
		flagged = append(flagged, row)
	}
	s.commerce.SetLowStockProducts(len(flagged))
	if len(flagged) == 0 {
		return flagged, nil
	}

	managers, err := s.repo.ListActiveManagers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list managers")
	}

	for _, product := range flagged {
		for i := range managers {
			manager := managers[i]
			exists, err := s.repo.HasUnreadForEntity(ctx, manager.ID, enums.NotificationTypeLowStock, product.ProductID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing alert")
			}
			if exists {
				continue
			}

			productID := product.ProductID
			notification := &models.Notification{
				UserID:   manager.ID,
				Type:     enums.NotificationTypeLowStock,
				Title:    fmt.Sprintf("Stock faible: %s", product.ProductName),
				Message:  fmt.Sprintf("Le produit %s (%s) est descendu a %d unites (seuil %d).", product.ProductName, product.SKU, product.Available, product.Threshold),
				EntityID: &productID,
			}
			if _, err := s.repo.CreateNotification(ctx, notification); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create alert")
			}
			if s.mail != nil {
				s.mail.SendAsync(ctx, mailer.LowStockAlert(manager.Email, product.ProductName, product.SKU, product.Available, product.Threshold))
			}
		}
	}
	return flagged, nil
}

func toNotificationDTO(n *models.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		EntityID:  n.EntityID,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
