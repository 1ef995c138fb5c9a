package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCan(t *testing.T) {
	tests := []struct {
		name string
		role Role
		perm Permission
		want bool
	}{
		{"reader can request a book", RoleReader, PermRequestBook, true},
		{"reader can borrow for themselves", RoleReader, PermBorrowSelf, true},
		{"reader can return own loan", RoleReader, PermReturnOwn, true},
		{"reader can renew own loan", RoleReader, PermRenewOwn, true},
		{"reader cannot approve requests", RoleReader, PermApproveRequests, false},
		{"reader cannot return for others", RoleReader, PermReturnAny, false},
		{"reader cannot manage the catalog", RoleReader, PermManageCatalog, false},

		{"librarian can approve requests", RoleLibrarian, PermApproveRequests, true},
		{"librarian can issue assisted borrows", RoleLibrarian, PermBorrowAssisted, true},
		{"librarian can return any loan", RoleLibrarian, PermReturnAny, true},
		{"librarian can view active loans", RoleLibrarian, PermViewActiveLoans, true},
		{"librarian cannot request a book", RoleLibrarian, PermRequestBook, false},
		{"librarian cannot manage users", RoleLibrarian, PermManageUsers, false},
		{"librarian cannot view reports", RoleLibrarian, PermViewReports, false},

		{"admin can manage the catalog", RoleAdmin, PermManageCatalog, true},
		{"admin can manage users", RoleAdmin, PermManageUsers, true},
		{"admin can view reports", RoleAdmin, PermViewReports, true},
		{"admin inherits approve requests", RoleAdmin, PermApproveRequests, true},
		{"admin inherits return any", RoleAdmin, PermReturnAny, true},
		{"admin inherits view active loans", RoleAdmin, PermViewActiveLoans, true},
		{"admin cannot request a book", RoleAdmin, PermRequestBook, false},

		{"unknown role can do nothing", Role("superuser"), PermManageUsers, false},
		{"empty role can do nothing", Role(""), PermRequestBook, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.perm))
		})
	}
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleReader.IsValid())
	assert.True(t, RoleLibrarian.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("moderator").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cret-pass",
		FullName: "Ada Reader",
	}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Password = "short"
	assert.Error(t, short.Validate())

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())
}

func TestChangeRoleRequestValidate(t *testing.T) {
	assert.NoError(t, ChangeRoleRequest{Role: "librarian"}.Validate())
	assert.Error(t, ChangeRoleRequest{Role: "root"}.Validate())
	assert.Error(t, ChangeRoleRequest{}.Validate())
}
