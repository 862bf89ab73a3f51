package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/contract/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Contract{}, &domain.ContractLine{}))
	return db
}

func sampleContract(node *snowflake.Node) domain.Contract {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	return domain.Contract{
		ID:                    node.Generate(),
		StoreID:               "store-1",
		CustomerID:            node.Generate(),
		CompanyID:             node.Generate(),
		CompanyLocationID:     node.Generate(),
		Name:                  "Warehouse restock",
		CurrencyCode:          "EUR",
		Status:                domain.StatusPending,
		StartDate:             time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		IntervalValue:         2,
		IntervalUnit:          "weekly",
		NextOrderCreationDate: time.Date(2025, time.June, 24, 0, 0, 0, 0, time.UTC),
		OrderTotal:            999.99,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func TestInsertAndFindByID(t *testing.T) {
	db := setupDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	contract := sampleContract(node)
	require.NoError(t, repo.Insert(ctx, db, &contract))

	found, err := repo.FindByID(ctx, db, "store-1", contract.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, contract.Name, found.Name)
	require.Equal(t, contract.Status, found.Status)
	require.Equal(t, contract.IntervalValue, found.IntervalValue)

	// Lookups are store-scoped.
	found, err = repo.FindByID(ctx, db, "other-store", contract.ID)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestLinesRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	contract := sampleContract(node)
	require.NoError(t, repo.Insert(ctx, db, &contract))

	lines := []domain.ContractLine{
		{ID: node.Generate(), ContractID: contract.ID, StoreID: contract.StoreID, VariantID: node.Generate(), SKU: "SKU-A", Quantity: 1, UnitPrice: 10, CreatedAt: contract.CreatedAt},
		{ID: node.Generate(), ContractID: contract.ID, StoreID: contract.StoreID, VariantID: node.Generate(), SKU: "SKU-B", Quantity: 4, UnitPrice: 25, CreatedAt: contract.CreatedAt},
	}
	require.NoError(t, repo.InsertLines(ctx, db, lines))

	listed, err := repo.ListLines(ctx, db, contract.StoreID, contract.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	replacement := []domain.ContractLine{
		{ID: node.Generate(), ContractID: contract.ID, StoreID: contract.StoreID, VariantID: node.Generate(), SKU: "SKU-C", Quantity: 2, UnitPrice: 50, CreatedAt: contract.CreatedAt},
	}
	require.NoError(t, repo.ReplaceLines(ctx, db, contract.StoreID, contract.ID, replacement))

	listed, err = repo.ListLines(ctx, db, contract.StoreID, contract.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "SKU-C", listed[0].SKU)
}

func TestUpdateLifecycleOptimisticCheck(t *testing.T) {
	db := setupDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	contract := sampleContract(node)
	require.NoError(t, repo.Insert(ctx, db, &contract))

	observed := contract.UpdatedAt
	contract.Status = domain.StatusActive
	contract.UpdatedAt = observed.Add(time.Minute)

	ok, err := repo.UpdateLifecycle(ctx, db, &contract, observed)
	require.NoError(t, err)
	require.True(t, ok)

	// A second writer that observed the old timestamp loses.
	stale := contract
	stale.Status = domain.StatusPaused
	ok, err = repo.UpdateLifecycle(ctx, db, &stale, observed)
	require.NoError(t, err)
	require.False(t, ok)

	found, err := repo.FindByID(ctx, db, contract.StoreID, contract.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, found.Status)
}

func TestDeleteRemovesContractAndLines(t *testing.T) {
	db := setupDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	contract := sampleContract(node)
	require.NoError(t, repo.Insert(ctx, db, &contract))
	require.NoError(t, repo.InsertLines(ctx, db, []domain.ContractLine{
		{ID: node.Generate(), ContractID: contract.ID, StoreID: contract.StoreID, VariantID: node.Generate(), SKU: "SKU-A", Quantity: 1, UnitPrice: 10, CreatedAt: contract.CreatedAt},
	}))

	require.NoError(t, repo.DeleteLines(ctx, db, contract.StoreID, contract.ID))
	require.NoError(t, repo.Delete(ctx, db, contract.StoreID, contract.ID))

	found, err := repo.FindByID(ctx, db, contract.StoreID, contract.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	lines, err := repo.ListLines(ctx, db, contract.StoreID, contract.ID)
	require.NoError(t, err)
	require.Empty(t, lines)
}
