package authz

import (
	"fmt"

	"github.com/textpages-admin/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.AdminRoleAdmin,
			Policies: []Policy{
				{Object: "*", Action: "*"},
			},
		},
		{
			Role: constants.AdminRoleViewer,
			Policies: []Policy{
				{Object: constants.GroupAuth, Action: constants.PermRead},
				{Object: constants.GroupUsers, Action: constants.PermRead},
				{Object: constants.GroupPages, Action: constants.PermRead},
				{Object: constants.GroupDashboard, Action: constants.PermRead},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色的默认策略，已存在的策略保持不变
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	for _, seed := range BuiltinRoleSeeds() {
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(seed.Role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
