package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
)

type stubNotificationRepo struct {
	notifications map[uuid.UUID]*models.Notification
	lowPhysical   []LowStockProduct
	lowVirtual    []LowStockProduct
	managers      []models.User
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{notifications: map[uuid.UUID]*models.Notification{}}
}

func (s *stubNotificationRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	s.notifications[n.ID] = n
	return n, nil
}

func (s *stubNotificationRepo) FindNotificationForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, n *models.Notification) error {
	s.notifications[n.ID] = n
	return nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	for _, n := range s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
		}
	}
	return nil
}

func (s *stubNotificationRepo) HasUnreadForEntity(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, entityID uuid.UUID) (bool, error) {
	for _, n := range s.notifications {
		if n.UserID == userID && n.Type == kind && n.ReadAt == nil && n.EntityID != nil && *n.EntityID == entityID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *stubNotificationRepo) FindLowPhysicalStock(ctx context.Context) ([]LowStockProduct, error) {
	return s.lowPhysical, nil
}

func (s *stubNotificationRepo) FindLowVirtualStock(ctx context.Context) ([]LowStockProduct, error) {
	return s.lowVirtual, nil
}

func (s *stubNotificationRepo) ListActiveManagers(ctx context.Context) ([]models.User, error) {
	return s.managers, nil
}

func newNotificationService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestPushAndListUnread(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := newNotificationService(t, repo)
	userID := uuid.New()

	_, err := svc.Push(context.Background(), PushInput{
		UserID:  userID,
		Type:    enums.NotificationTypeOrderPaid,
		Title:   "Commande payee",
		Message: "La commande CMD-2026-08-0001 a ete payee.",
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	result, err := svc.List(context.Background(), userID, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Notifications) != 1 || result.UnreadCount != 1 {
		t.Fatalf("got %d notifications, %d unread", len(result.Notifications), result.UnreadCount)
	}
}

func TestPushRejectsUnknownType(t *testing.T) {
	svc := newNotificationService(t, newStubNotificationRepo())

	_, err := svc.Push(context.Background(), PushInput{
		UserID: uuid.New(),
		Type:   enums.NotificationType("promo"),
		Title:  "Promo",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := newNotificationService(t, repo)
	userID := uuid.New()

	created, err := svc.Push(context.Background(), PushInput{
		UserID: userID,
		Type:   enums.NotificationTypeSupportReply,
		Title:  "Reponse support",
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	first, err := svc.MarkRead(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if first.ReadAt == nil {
		t.Fatal("expected read_at set")
	}

	second, err := svc.MarkRead(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Fatal("expected read_at unchanged on second call")
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := newNotificationService(t, repo)

	created, err := svc.Push(context.Background(), PushInput{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeOrderShipped,
		Title:  "Commande expediee",
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	_, err = svc.MarkRead(context.Background(), uuid.New(), created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScanLowStockNotifiesEachManagerOnce(t *testing.T) {
	repo := newStubNotificationRepo()
	productID := uuid.New()
	repo.lowPhysical = []LowStockProduct{
		{ProductID: productID, ProductName: "Riz local 25kg", SKU: "RIZ-25", Available: 2, Threshold: 5, Source: "physical"},
	}
	repo.managers = []models.User{
		{ID: uuid.New(), Email: "m1@nimbashop.gn", Role: enums.UserRoleManager},
		{ID: uuid.New(), Email: "m2@nimbashop.gn", Role: enums.UserRoleManager},
	}
	svc := newNotificationService(t, repo)

	flagged, err := svc.ScanLowStock(context.Background())
	if err != nil {
		t.Fatalf("ScanLowStock: %v", err)
	}
	if len(flagged) != 1 {
		t.Fatalf("flagged = %d, want 1", len(flagged))
	}
	if len(repo.notifications) != 2 {
		t.Fatalf("notifications = %d, want one per manager", len(repo.notifications))
	}

	// A second scan must not duplicate unread alerts.
	if _, err := svc.ScanLowStock(context.Background()); err != nil {
		t.Fatalf("ScanLowStock again: %v", err)
	}
	if len(repo.notifications) != 2 {
		t.Fatalf("notifications = %d after rescan, want 2", len(repo.notifications))
	}
}

func TestScanLowStockDeduplicatesAcrossSources(t *testing.T) {
	repo := newStubNotificationRepo()
	productID := uuid.New()
	repo.lowPhysical = []LowStockProduct{
		{ProductID: productID, ProductName: "Huile 5L", SKU: "HUI-5", Available: 1, Threshold: 5, Source: "physical"},
	}
	repo.lowVirtual = []LowStockProduct{
		{ProductID: productID, ProductName: "Huile 5L", SKU: "HUI-5", Available: 3, Threshold: 5, Source: "dropship"},
	}
	repo.managers = []models.User{
		{ID: uuid.New(), Email: "m1@nimbashop.gn", Role: enums.UserRoleManager},
	}
	svc := newNotificationService(t, repo)

	flagged, err := svc.ScanLowStock(context.Background())
	if err != nil {
		t.Fatalf("ScanLowStock: %v", err)
	}
	if len(flagged) != 1 {
		t.Fatalf("flagged = %d, want 1", len(flagged))
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(repo.notifications))
	}
}
