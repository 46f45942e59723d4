package service

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
)

// policyModel grants an object (a permission code) to a subject.
// Subjects are "role:<ROLE>" or "user:<id>".
const policyModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

// NewEnforcer loads policies from the casbin_rule table through the gorm adapter.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, errors.Wrap(err, "casbin model")
	}
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, errors.Wrap(err, "casbin adapter")
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, errors.Wrap(err, "casbin enforcer")
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, errors.Wrap(err, "load policy")
	}
	return enforcer, nil
}

func roleSubject(role string) string {
	return "role:" + role
}

func userSubject(id string) string {
	return "user:" + id
}
