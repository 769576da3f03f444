package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/liuqy/experiment-management/internal"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Module identifies a domain area subject to independent permission grants.
type Module string

const (
	ModuleBatch          Module = "batch"
	ModulePerson         Module = "person"
	ModuleExperiment     Module = "experiment"
	ModuleCompetitorFile Module = "competitor-file"
	ModuleFingerBlood    Module = "finger-blood"
	ModuleSensor         Module = "sensor"
)

// Modules lists every grantable module, in display order.
var Modules = []Module{
	ModuleBatch,
	ModulePerson,
	ModuleExperiment,
	ModuleCompetitorFile,
	ModuleFingerBlood,
	ModuleSensor,
}

func ValidModule(m string) bool {
	for _, known := range Modules {
		if Module(m) == known {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Grant is the capability set of one user for one module. The three flags
// are independent; write does not imply read.
type Grant struct {
	Module    Module `json:"module"`
	CanRead   bool   `json:"can_read"`
	CanWrite  bool   `json:"can_write"`
	CanDelete bool   `json:"can_delete"`
}

func (g Grant) Allows(action Action) bool {
	switch action {
	case ActionRead:
		return g.CanRead
	case ActionWrite:
		return g.CanWrite
	case ActionDelete:
		return g.CanDelete
	}
	return false
}

// User is the resolved identity attached to each authenticated request.
type User struct {
	ID       int64            `json:"id"`
	Username string           `json:"username"`
	Role     string           `json:"role"`
	Grants   map[Module]Grant `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Can reports whether the user may perform action on module. Admin
// short-circuits the grant lookup entirely.
func (u *User) Can(module Module, action Action) bool {
	if u.IsAdmin() {
		return true
	}
	grant, ok := u.Grants[module]
	if !ok {
		return false
	}
	return grant.Allows(action)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(internal.ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, internal.ContextUserKey, u)
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthResult is the login/register response body.
type AuthResult struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresAt   int64    `json:"expires_at"`
	UserInfo    UserInfo `json:"user_info"`
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(username, role string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}
