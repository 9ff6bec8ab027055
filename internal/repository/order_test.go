package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"stripe-checkout-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one named in-memory database per test; shared cache keeps every
	// pooled connection on the same database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.WebhookEvent{}))
	return db
}

func sampleOrder(sessionID string) *model.Order {
	return &model.Order{
		StripeSessionID: sessionID,
		Email:           "a@b.com",
		Name:            "Ada Lovelace",
		Line1:           "Svanevej 1",
		Line2:           "2. tv",
		City:            "Copenhagen",
		PostalCode:      "2400",
		Country:         "DK",
		Phone:           "+45 12 34 56 78",
		Items:           `[{"name":"Book","unit_amount":1000000,"quantity":2}]`,
		Total:           20000,
	}
}

func TestOrderRoundTrip(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := sampleOrder("sess_1")
	require.NoError(t, repo.Create(ctx, order))
	assert.NotZero(t, order.ID)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.StripeSessionID, got.StripeSessionID)
	assert.Equal(t, order.Email, got.Email)
	assert.Equal(t, order.Name, got.Name)
	assert.Equal(t, order.Line1, got.Line1)
	assert.Equal(t, order.Line2, got.Line2)
	assert.Equal(t, order.City, got.City)
	assert.Equal(t, order.PostalCode, got.PostalCode)
	assert.Equal(t, order.Country, got.Country)
	assert.Equal(t, order.Phone, got.Phone)
	assert.Equal(t, order.Items, got.Items)
	assert.Equal(t, order.Total, got.Total)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateRejectsDuplicateSession(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleOrder("sess_1")))

	err := repo.Create(ctx, sampleOrder("sess_1"))
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	// a different session is unaffected
	assert.NoError(t, repo.Create(ctx, sampleOrder("sess_2")))
}

func TestFindBySessionID(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleOrder("sess_1")))

	got, err := repo.FindBySessionID(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)

	_, err = repo.FindBySessionID(ctx, "sess_unknown")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestWebhookEventAuditTrail(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t))
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))

	exists, err = repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, exists)
}
