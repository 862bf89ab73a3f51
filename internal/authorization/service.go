package authorization

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers permission questions against the external role store. The
// scheduler core only needs one: may this approver approve contracts for this
// company location.
type Service interface {
	HasApprovalPermission(ctx context.Context, storeID string, companyLocationID, approverID snowflake.ID) (bool, error)
	GrantApprovalPermission(ctx context.Context, storeID string, companyLocationID, approverID snowflake.ID) error
}

const approvalAction = "contract:approve"

// Policies are store-scoped RBAC triples: subject (approver), domain
// (store/location), action.
const rbacModel = `
[request_definition]
r = sub, dom, act

[policy_definition]
p = sub, dom, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.dom == p.dom && r.act == p.act
`

type service struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) (Service, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("create casbin adapter: %w", err)
	}

	model, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(model, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	return &service{
		enforcer: enforcer,
		log:      log.Named("authorization.service"),
	}, nil
}

func (s *service) HasApprovalPermission(ctx context.Context, storeID string, companyLocationID, approverID snowflake.ID) (bool, error) {
	ok, err := s.enforcer.Enforce(approverID.String(), permissionDomain(storeID, companyLocationID), approvalAction)
	if err != nil {
		return false, fmt.Errorf("enforce approval permission: %w", err)
	}
	return ok, nil
}

func (s *service) GrantApprovalPermission(ctx context.Context, storeID string, companyLocationID, approverID snowflake.ID) error {
	if _, err := s.enforcer.AddPolicy(approverID.String(), permissionDomain(storeID, companyLocationID), approvalAction); err != nil {
		return fmt.Errorf("grant approval permission: %w", err)
	}
	return nil
}

func permissionDomain(storeID string, companyLocationID snowflake.ID) string {
	return storeID + "/" + companyLocationID.String()
}
