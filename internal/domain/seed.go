package domain

// SeedRoles 初始角色；RoleLevel 决定列表排序
var SeedRoles = []Role{
	{RoleName: "developer", RoleLevel: 1, RoleDescription: "Developer: every business permission, may run privileged maintenance"},
	{RoleName: "admin", RoleLevel: 2, RoleDescription: "Administrator: every business permission except developer ones"},
	{RoleName: "editor", RoleLevel: 3, RoleDescription: "Editor: sees every page except user management"},
	{RoleName: "guest", RoleLevel: 4, RoleDescription: "Guest: dashboard, blog, permission test and about pages only"},
}

// SeedUser 初始用户及其角色；developer 同时拥有 developer 和 admin
type SeedUser struct {
	UserID string
	Name   string
	Roles  []string
}

var SeedUsers = []SeedUser{
	{UserID: "developer", Name: "Zhang San", Roles: []string{"developer", "admin"}},
	{UserID: "admin", Name: "Li Si", Roles: []string{"admin"}},
	{UserID: "editor", Name: "Wang Ermazi", Roles: []string{"editor"}},
	{UserID: "guest", Name: "Sun Xiaogou", Roles: []string{"guest"}},
}

// DefaultSeedPassword 种子用户初始密码
const DefaultSeedPassword = "123"

// HiddenRow 列表中不展示的 用户/角色 组合
var HiddenRow = UserRole{UserID: "developer", RoleName: "admin"}
