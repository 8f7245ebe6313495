package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	"github.com/littlethreads/backend/pkg/pagination"
)

func insertOrder(t *testing.T, repo *Repository, userID *uuid.UUID, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:     userID,
		Status:     status,
		TotalPrice: decimal.RequireFromString("1800.00"),
		Lines: models.OrderLines{
			{
				ProductID: uuid.New(),
				Title:     "Raincoat",
				Quantity:  2,
				Size:      "2T",
				UnitPrice: decimal.NewFromInt(900),
				LineTotal: decimal.NewFromInt(1800),
			},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	created2, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created2
}

func TestRepositoryList_paginationNewestFirst(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	now := time.Now().UTC()
	insertOrder(t, repo, nil, enums.OrderStatusPending, now.Add(-2*time.Hour))
	insertOrder(t, repo, nil, enums.OrderStatusPending, now.Add(-time.Hour))
	newest := insertOrder(t, repo, nil, enums.OrderStatusPending, now)

	rows, total, err := repo.List(context.Background(), pagination.Params{Page: 1, Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, newest.ID, rows[0].ID)

	second, total, err := repo.List(context.Background(), pagination.Params{Page: 2, Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, int64(3), total)
}

func TestRepositoryList_statusFilter(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	now := time.Now().UTC()
	insertOrder(t, repo, nil, enums.OrderStatusPending, now)
	shipped := insertOrder(t, repo, nil, enums.OrderStatusShipped, now)

	status := enums.OrderStatusShipped
	rows, total, err := repo.List(context.Background(), pagination.Params{}, &status)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, shipped.ID, rows[0].ID)
}

func TestRepositoryCountByUser(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	userID := uuid.New()
	otherID := uuid.New()
	now := time.Now().UTC()
	insertOrder(t, repo, &userID, enums.OrderStatusPending, now)
	insertOrder(t, repo, &userID, enums.OrderStatusDelivered, now)
	insertOrder(t, repo, &otherID, enums.OrderStatusPending, now)
	insertOrder(t, repo, nil, enums.OrderStatusPending, now)

	count, err := repo.CountByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepositoryLinesRoundTrip(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	color := "Yellow"
	order := &models.Order{
		TotalPrice: decimal.RequireFromString("1620.00"),
		Status:     enums.OrderStatusPending,
		Lines: models.OrderLines{
			{
				ProductID: uuid.New(),
				Title:     "Raincoat",
				Quantity:  2,
				Size:      "2T",
				Color:     &color,
				UnitPrice: decimal.NewFromInt(810),
				LineTotal: decimal.NewFromInt(1620),
			},
		},
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "Raincoat", found.Lines[0].Title)
	require.NotNil(t, found.Lines[0].Color)
	assert.Equal(t, "Yellow", *found.Lines[0].Color)
	assert.True(t, found.Lines[0].UnitPrice.Equal(decimal.NewFromInt(810)))
	assert.True(t, found.TotalPrice.Equal(decimal.RequireFromString("1620.00")))
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	order := insertOrder(t, repo, nil, enums.OrderStatusPending, time.Now().UTC())
	require.NoError(t, repo.Delete(context.Background(), order.ID))

	_, err := repo.FindByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
