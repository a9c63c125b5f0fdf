package proxy

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/access"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
)

const authorizedImplementationStorageKey = "authorizedImplementation"

// UpgradeGate answers the proxy's question "may this caller swap the logic
// implementation". The pointer swap itself and storage continuity are the
// proxy's responsibility, the gate only authorizes and records the target.
type UpgradeGate struct {
	ownable        *access.Ownable
	implementation *common.VMSlot[ethcommon.Address]
}

func NewUpgradeGate(contractAccount ledger.IAccount, ownable *access.Ownable) *UpgradeGate {
	return &UpgradeGate{
		ownable:        ownable,
		implementation: common.NewVMSlot[ethcommon.Address](contractAccount, authorizedImplementationStorageKey),
	}
}

// Authorize fails with ErrUnauthorized unless the caller is the current
// owner. The new implementation's contents are deliberately not validated,
// that responsibility belongs to the deploying operator.
func (g *UpgradeGate) Authorize(caller, newImplementation ethcommon.Address) error {
	if err := g.ownable.CheckOwner(caller); err != nil {
		return err
	}
	return g.implementation.Put(newImplementation)
}

// AuthorizedImplementation returns the last implementation the owner cleared
// for upgrade, the zero address if none was ever authorized.
func (g *UpgradeGate) AuthorizedImplementation() ethcommon.Address {
	return g.implementation.GetOrDefault(ethcommon.Address{})
}
