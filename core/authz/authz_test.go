package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/account"
)

func TestEnforcer_Enforce(t *testing.T) {
	e, err := NewEnforcer(core.NopLogger{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		roles []string
		obj   string
		act   string
		want  bool
	}{
		{name: "no roles", roles: nil, obj: ObjTable, act: ActRead, want: false},
		{name: "unknown role", roles: []string{"guest:"}, obj: ObjTable, act: ActRead, want: false},
		{name: "viewer reads", roles: []string{account.RoleViewer}, obj: ObjTable, act: ActRead, want: true},
		{name: "viewer cannot delete", roles: []string{account.RoleViewer}, obj: ObjTable, act: ActDelete, want: false},
		{name: "editor reads", roles: []string{account.RoleEditor}, obj: ObjTable, act: ActRead, want: true},
		{name: "editor deletes", roles: []string{account.RoleEditor}, obj: ObjTable, act: ActDelete, want: true},
		{name: "editor cannot manage accounts", roles: []string{account.RoleEditor}, obj: ObjAccount, act: ActManage, want: false},
		{name: "admin deletes", roles: []string{account.RoleAdmin}, obj: ObjTable, act: ActDelete, want: true},
		{name: "admin manages accounts", roles: []string{account.RoleAdmin}, obj: ObjAccount, act: ActManage, want: true},
		{name: "owner inherits admin", roles: []string{account.RoleAdminOwner}, obj: ObjAccount, act: ActManage, want: true},
		{name: "any role grants", roles: []string{"guest:", account.RoleEditor}, obj: ObjTable, act: ActDelete, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Enforce(tt.roles, tt.obj, tt.act); got != tt.want {
				t.Errorf("Enforce(%v, %q, %q) = %v; want %v", tt.roles, tt.obj, tt.act, got, tt.want)
			}
		})
	}
}
