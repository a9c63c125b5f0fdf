package access

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
)

const ownerStorageKey = "owner"

var ErrInvalidOwner = errors.New("new owner is the zero address")

// Ownable tracks the single privileged address of a contract.
type Ownable struct {
	owner *common.VMSlot[ethcommon.Address]
}

func NewOwnable(contractAccount ledger.IAccount) *Ownable {
	return &Ownable{
		owner: common.NewVMSlot[ethcommon.Address](contractAccount, ownerStorageKey),
	}
}

func (o *Ownable) Owner() ethcommon.Address {
	return o.owner.GetOrDefault(ethcommon.Address{})
}

func (o *Ownable) SetOwner(addr ethcommon.Address) error {
	return o.owner.Put(addr)
}

// CheckOwner fails with ErrUnauthorized unless addr is the current owner.
func (o *Ownable) CheckOwner(addr ethcommon.Address) error {
	if o.Owner() != addr {
		return errors.Wrapf(ErrUnauthorized, "%s is not the owner", addr)
	}
	return nil
}

func (o *Ownable) TransferOwnership(caller, newOwner ethcommon.Address) error {
	if err := o.CheckOwner(caller); err != nil {
		return err
	}
	if common.IsZeroAddress(newOwner) {
		return ErrInvalidOwner
	}
	return o.SetOwner(newOwner)
}
