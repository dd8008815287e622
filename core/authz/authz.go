// Package authz decides which account roles may act on which objects.
package authz

import (
	"os"
	"path"
	"path/filepath"

	"github.com/casbin/casbin/v3"
	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/fs"
)

const (
	policyDir  = "assets/authz"
	modelFile  = "model.conf"
	policyFile = "policy.csv"
)

// objects
const (
	ObjTable   = "table"
	ObjAccount = "account"
)

// actions
const (
	ActRead   = "read"
	ActDelete = "delete"
	ActManage = "manage"
)

type Enforcer struct {
	enforcer *casbin.Enforcer
	logger   core.Logger
}

// NewEnforcer loads the embedded RBAC model and policy.
func NewEnforcer(logger core.Logger) (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "syllabus-casbin-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating policy dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	for _, name := range []string{modelFile, policyFile} {
		data, err := appfs.FS.ReadFile(path.Join(policyDir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return nil, errors.Wrapf(err, "writing %s", name)
		}
	}

	e, err := casbin.NewEnforcer(filepath.Join(dir, modelFile), filepath.Join(dir, policyFile))
	if err != nil {
		return nil, errors.Wrap(err, "loading policy")
	}
	return &Enforcer{enforcer: e, logger: logger}, nil
}

// Enforce reports whether any of roles may perform act on obj.
func (e *Enforcer) Enforce(roles []string, obj, act string) bool {
	for _, role := range roles {
		ok, err := e.enforcer.Enforce(role, obj, act)
		if err != nil {
			e.logger.Error("authz.Enforce: "+err.Error(), err)
			return false
		}
		if ok {
			return true
		}
	}
	return false
}
