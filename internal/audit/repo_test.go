package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.AuditLog{},
		&models.SecurityEvent{},
	))

	return db
}

func TestListLogsFilters(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	actorID := uuid.New()
	orderID := uuid.New()
	meta, err := json.Marshal(map[string]string{"status": "shipped"})
	require.NoError(t, err)

	_, err = repo.CreateLog(ctx, &models.AuditLog{
		ActorID:    &actorID,
		Action:     "order.update_status",
		EntityType: "order",
		EntityID:   &orderID,
		Metadata:   meta,
	})
	require.NoError(t, err)
	_, err = repo.CreateLog(ctx, &models.AuditLog{
		Action:     "product.create",
		EntityType: "product",
	})
	require.NoError(t, err)

	entityType := "order"
	logs, err := repo.ListLogs(ctx, LogFilters{EntityType: &entityType}, nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "order.update_status", logs[0].Action)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, actorID, *logs[0].ActorID)

	all, err := repo.ListLogs(ctx, LogFilters{}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListLogsOrdering(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		log := &models.AuditLog{
			Action:     "stock.adjust",
			EntityType: "stock",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(log).Error)
	}

	logs, err := repo.ListLogs(ctx, LogFilters{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))
	assert.True(t, logs[1].CreatedAt.After(logs[2].CreatedAt))
}

func TestListEventsByType(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	email := "intrus@exemple.gn"
	_, err := repo.CreateEvent(ctx, &models.SecurityEvent{
		Type:      enums.SecurityEventLoginFailed,
		Email:     &email,
		IPAddress: "41.223.0.10",
		Path:      "/api/v1/auth/login",
	})
	require.NoError(t, err)
	_, err = repo.CreateEvent(ctx, &models.SecurityEvent{
		Type:      enums.SecurityEventAccessDenied,
		IPAddress: "41.223.0.11",
		Path:      "/api/manager/v1/orders",
	})
	require.NoError(t, err)

	kind := enums.SecurityEventLoginFailed
	events, err := repo.ListEvents(ctx, EventFilters{Type: &kind}, nil, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Email)
	assert.Equal(t, email, *events[0].Email)
}
