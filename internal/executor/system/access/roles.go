package access

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
)

const rolesStorageKey = "roles"

type Role uint8

const (
	// RoleAdmin may grant and revoke any role
	RoleAdmin Role = iota

	// RoleRewardManager may distribute the reward pool
	RoleRewardManager
)

var (
	ErrUnauthorized = errors.New("permission denied")
	ErrUnknownRole  = errors.New("unknown role")
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRewardManager:
		return "reward_manager"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r Role) valid() bool {
	return r == RoleAdmin || r == RoleRewardManager
}

type roleKey struct {
	Role Role
	Addr ethcommon.Address
}

// RoleController persists role grants in the contract account's storage.
// Grant authorization is the caller's concern, the controller only stores
// membership.
type RoleController struct {
	grants *common.VMMap[roleKey, bool]
}

func NewRoleController(contractAccount ledger.IAccount) *RoleController {
	return &RoleController{
		grants: common.NewVMMap[roleKey, bool](contractAccount, rolesStorageKey, func(key roleKey) string {
			return fmt.Sprintf("%d_%s", key.Role, key.Addr.String())
		}),
	}
}

func (rc *RoleController) HasRole(role Role, addr ethcommon.Address) bool {
	if !role.valid() {
		return false
	}
	return rc.grants.Has(roleKey{Role: role, Addr: addr})
}

func (rc *RoleController) GrantRole(role Role, addr ethcommon.Address) error {
	if !role.valid() {
		return errors.Wrapf(ErrUnknownRole, "grant role %d", role)
	}
	return rc.grants.Put(roleKey{Role: role, Addr: addr}, true)
}

func (rc *RoleController) RevokeRole(role Role, addr ethcommon.Address) error {
	if !role.valid() {
		return errors.Wrapf(ErrUnknownRole, "revoke role %d", role)
	}
	return rc.grants.Delete(roleKey{Role: role, Addr: addr})
}

// CheckRole fails with ErrUnauthorized unless addr holds the role.
func (rc *RoleController) CheckRole(role Role, addr ethcommon.Address) error {
	if !rc.HasRole(role, addr) {
		return errors.Wrapf(ErrUnauthorized, "%s is not a %s", addr, role)
	}
	return nil
}
