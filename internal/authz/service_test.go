package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:authz_%s_%d?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func mustAllow(t *testing.T, svc *Service, adminID uint, obj, act string, want bool) {
	t.Helper()
	got, err := svc.EnforceAdmin(adminID, obj, act)
	if err != nil {
		t.Fatalf("enforce %s %s failed: %v", act, obj, err)
	}
	if got != want {
		t.Fatalf("enforce %s %s: want %v got %v", act, obj, want, got)
	}
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := newTestService(t)
	// 重复初始化保持幂等
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	if err := svc.SetAdminRoles(3, []string{RoleOrderOperator}); err != nil {
		t.Fatalf("set operator role failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"role:" + RoleMarketing}); err != nil {
		t.Fatalf("set marketing role failed: %v", err)
	}

	mustAllow(t, svc, 3, "/api/v1/admin/orders", "GET", true)
	mustAllow(t, svc, 3, "/api/v1/admin/orders/7/status", "patch", true)
	mustAllow(t, svc, 3, "/api/v1/admin/coupons", "POST", false)
	mustAllow(t, svc, 4, "/api/v1/admin/coupons", "POST", true)
	mustAllow(t, svc, 4, "/api/v1/admin/orders/7/status", "PATCH", false)
	mustAllow(t, svc, 5, "/api/v1/admin/orders", "GET", false)
}

func TestSetAdminRolesOverridesPreviousRoles(t *testing.T) {
	svc := newTestService(t)
	if err := svc.SetAdminRoles(2, []string{RoleOrderOperator}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{RoleMarketing, RoleMarketing}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:marketing" {
		t.Fatalf("roles want [role:marketing], got=%v", roles)
	}
	mustAllow(t, svc, 2, "/admin/orders/9/status", "PATCH", false)
}

func TestSetAdminRolesRejectsUnknownRoleWithoutChanges(t *testing.T) {
	svc := newTestService(t)
	if err := svc.SetAdminRoles(6, []string{RoleOrderOperator}); err != nil {
		t.Fatalf("set role failed: %v", err)
	}

	err := svc.SetAdminRoles(6, []string{RoleMarketing, "warehouse"})
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("want ErrUnknownRole, got %v", err)
	}
	roles, err := svc.GetAdminRoles(6)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:order_operator" {
		t.Fatalf("roles should be untouched, got=%v", roles)
	}

	if err := svc.SetAdminRoles(6, []string{"  "}); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("want ErrRoleRequired, got %v", err)
	}
}

func TestDescribeRoles(t *testing.T) {
	svc := newTestService(t)
	if err := svc.GrantRolePolicy("support", "/admin/orders/:id", "GET"); err != nil {
		t.Fatalf("grant policy failed: %v", err)
	}
	views, err := svc.DescribeRoles()
	if err != nil {
		t.Fatalf("describe roles failed: %v", err)
	}
	byRole := make(map[string]RoleView, len(views))
	for _, v := range views {
		byRole[v.Role] = v
	}
	if len(byRole) != 4 {
		t.Fatalf("want 4 roles, got %v", views)
	}
	op := byRole["role:order_operator"]
	if len(op.Inherits) != 1 || op.Inherits[0] != "role:readonly_auditor" {
		t.Fatalf("unexpected operator inherits: %v", op.Inherits)
	}
	if len(op.Policies) != 1 || op.Policies[0].Action != "PATCH" {
		t.Fatalf("unexpected operator policies: %v", op.Policies)
	}
	if support := byRole["role:support"]; len(support.Inherits) != 0 || len(support.Policies) != 1 {
		t.Fatalf("unexpected support view: %+v", support)
	}
}

func TestNormalizeHelpers(t *testing.T) {
	objects := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "/api/v1x", want: "/api/v1x"},
		{in: "", want: "/"},
	}
	for _, item := range objects {
		if got := NormalizeObject(item.in); got != item.want {
			t.Fatalf("NormalizeObject(%q) want %q got %q", item.in, item.want, got)
		}
	}

	if got, err := NormalizeRole(" order operator "); err != nil || got != "role:order_operator" {
		t.Fatalf("NormalizeRole got %q err %v", got, err)
	}
	if _, err := NormalizeRole("role:"); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("bare prefix should be rejected, got %v", err)
	}
	if _, err := (*Service)(nil).ListRoles(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil service should be unavailable, got %v", err)
	}
}
