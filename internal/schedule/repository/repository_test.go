package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/schedule/domain"
	"github.com/railzwaylabs/contractflow/internal/schedule/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&contractdomain.Contract{},
		&contractdomain.ContractLine{},
		&domain.ScheduleLogEntry{},
	))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, node
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, db *gorm.DB, node *snowflake.Node, storeID string, status contractdomain.Status, next time.Time) contractdomain.Contract {
	t.Helper()
	c := contractdomain.Contract{
		ID:                    node.Generate(),
		StoreID:               storeID,
		CustomerID:            node.Generate(),
		CompanyID:             node.Generate(),
		CompanyLocationID:     node.Generate(),
		Name:                  "Recurring order",
		CurrencyCode:          "USD",
		Status:                status,
		StartDate:             date(2025, time.January, 1),
		EndDate:               date(2025, time.December, 31),
		IntervalValue:         1,
		IntervalUnit:          "monthly",
		NextOrderCreationDate: next,
		OrderTotal:            100,
		CreatedAt:             date(2025, time.January, 1),
		UpdatedAt:             date(2025, time.January, 1),
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestFindEligible(t *testing.T) {
	db, node := setupDB(t)
	repo := repository.Provide()
	ctx := context.Background()
	now := date(2025, time.June, 10)

	due := seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 10))
	dueEarlier := seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 1))
	seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 20))  // not yet due
	seed(t, db, node, "store-1", contractdomain.StatusPaused, date(2025, time.June, 1))   // wrong status
	seed(t, db, node, "store-2", contractdomain.StatusActive, date(2025, time.June, 1))   // other store

	eligible, err := repo.FindEligible(ctx, db, "store-1", now)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	// Ordered by due date, oldest first.
	require.Equal(t, dueEarlier.ID, eligible[0].ID)
	require.Equal(t, due.ID, eligible[1].ID)
}

func TestDistinctDueStores(t *testing.T) {
	db, node := setupDB(t)
	repo := repository.Provide()
	ctx := context.Background()
	now := date(2025, time.June, 10)

	seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 1))
	seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 5))
	seed(t, db, node, "store-2", contractdomain.StatusActive, date(2025, time.June, 1))
	seed(t, db, node, "store-3", contractdomain.StatusActive, date(2025, time.July, 1))

	stores, err := repo.DistinctDueStores(ctx, db, now)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"store-1", "store-2"}, stores)
}

func TestClaimNextOrderDate(t *testing.T) {
	db, node := setupDB(t)
	repo := repository.Provide()
	ctx := context.Background()
	now := date(2025, time.June, 10)

	c := seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 10))
	next := date(2025, time.July, 10)

	claimed, err := repo.ClaimNextOrderDate(ctx, db, &c, next, now)
	require.NoError(t, err)
	require.True(t, claimed)

	// A second claim against the same observed date loses.
	claimed, err = repo.ClaimNextOrderDate(ctx, db, &c, date(2025, time.August, 10), now)
	require.NoError(t, err)
	require.False(t, claimed)

	var stored contractdomain.Contract
	require.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
	require.Equal(t, next, stored.NextOrderCreationDate.UTC())
}

func TestMarkCompleted(t *testing.T) {
	db, node := setupDB(t)
	repo := repository.Provide()
	ctx := context.Background()
	now := date(2025, time.June, 10)

	c := seed(t, db, node, "store-1", contractdomain.StatusActive, date(2025, time.June, 1))
	require.NoError(t, repo.MarkCompleted(ctx, db, &c, now))

	var stored contractdomain.Contract
	require.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
	require.Equal(t, contractdomain.StatusCompleted, stored.Status)
}

func TestAppendAndListLogs(t *testing.T) {
	db, node := setupDB(t)
	repo := repository.Provide()
	ctx := context.Background()

	contractA := node.Generate()
	contractB := node.Generate()
	msg := "order SO-1 created"

	entries := []domain.ScheduleLogEntry{
		{ID: node.Generate(), StoreID: "store-1", ContractID: contractA, Status: domain.LogStatusSuccess, Message: &msg, CreatedAt: date(2025, time.June, 1)},
		{ID: node.Generate(), StoreID: "store-1", ContractID: contractB, Status: domain.LogStatusFailed, CreatedAt: date(2025, time.June, 2)},
		{ID: node.Generate(), StoreID: "store-2", ContractID: contractA, Status: domain.LogStatusSkipped, CreatedAt: date(2025, time.June, 3)},
	}
	for i := range entries {
		require.NoError(t, repo.AppendLog(ctx, db, &entries[i]))
	}

	logs, err := repo.ListLogs(ctx, db, "store-1", nil, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Newest first.
	require.Equal(t, domain.LogStatusFailed, logs[0].Status)

	logs, err = repo.ListLogs(ctx, db, "store-1", &contractA, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Message)
	require.Equal(t, msg, *logs[0].Message)
}
