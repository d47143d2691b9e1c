package model

import "time"

// Roles carried in the JWT role claim and the users.role column.
const (
	RoleCustomer = "CUSTOMER"
	RoleOperator = "OPERATOR"
)

// User represents an application user record as stored in the `users`
// table. Accounts are provisioned by the external identity layer; this
// service only reads them and maintains the pass code.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Name      – display name.
//  Email     – unique email address.
//  Code      – 6-digit pass code used at the entrance keypad (may be empty
//              until one is assigned).
//  Role      – CUSTOMER or OPERATOR.
//  IsActive  – whether the account is active.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    // users.id
	Name      string    // users.name
	Email     string    // users.email
	Code      string    // users.code (nullable)
	Role      string    // users.role
	IsActive  bool      // users.is_active
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}
