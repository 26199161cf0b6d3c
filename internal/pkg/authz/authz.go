package authz

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
)

// Permissions are "<object>:<action>"; roles are subjects "role:<slug>".
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type Authorizer struct {
	enforcer *casbin.Enforcer
	log      *slog.Logger
}

var _ user.Authorizer = (*Authorizer)(nil)

// NewAuthorizer builds an in-memory enforcer seeded with the given role policy.
func NewAuthorizer(policy map[user.Role][]user.Permission, log *slog.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}

	for role, permissions := range policy {
		for _, p := range permissions {
			obj, act, err := splitPermission(p)
			if err != nil {
				return nil, err
			}
			if _, err := enforcer.AddPolicy(SubjectFromRole(role), obj, act); err != nil {
				return nil, fmt.Errorf("authz: add policy %s %s: %w", role, p, err)
			}
		}
	}

	return &Authorizer{enforcer: enforcer, log: log}, nil
}

func SubjectFromRole(role user.Role) string {
	slug := strings.TrimSpace(strings.ToLower(string(role)))
	if slug == "" {
		slug = "anonymous"
	}
	return "role:" + slug
}

// Allowed denies on enforcer errors.
func (a *Authorizer) Allowed(role user.Role, permission user.Permission) bool {
	obj, act, err := splitPermission(permission)
	if err != nil {
		a.log.Warn("authz: malformed permission", slog.String("permission", string(permission)))
		return false
	}
	ok, err := a.enforcer.Enforce(SubjectFromRole(role), obj, act)
	if err != nil {
		a.log.Warn("authz: enforce failed", slog.String("role", string(role)), slog.Any("error", err))
		return false
	}
	return ok
}

func splitPermission(p user.Permission) (string, string, error) {
	obj, act, ok := strings.Cut(string(p), ":")
	if !ok || obj == "" || act == "" {
		return "", "", fmt.Errorf("authz: malformed permission %q", p)
	}
	return obj, act, nil
}
