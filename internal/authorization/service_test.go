package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestApprovalPermissionRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	svc, err := NewService(db, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	approver := snowflake.ID(42)
	location := snowflake.ID(77)

	ok, err := svc.HasApprovalPermission(ctx, "store-1", location, approver)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.GrantApprovalPermission(ctx, "store-1", location, approver))

	ok, err = svc.HasApprovalPermission(ctx, "store-1", location, approver)
	require.NoError(t, err)
	require.True(t, ok)

	// Permission is scoped to the store and location it was granted for.
	ok, err = svc.HasApprovalPermission(ctx, "store-2", location, approver)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.HasApprovalPermission(ctx, "store-1", snowflake.ID(88), approver)
	require.NoError(t, err)
	require.False(t, ok)
}
