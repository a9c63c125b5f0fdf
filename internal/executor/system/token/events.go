package token

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/pkg/packer"
)

const (
	TransferEvent             = "Transfer"
	TaxUpdatedEvent           = "TaxUpdated"
	RewardDistributedEvent    = "RewardDistributed"
	RoleGrantedEvent          = "RoleGranted"
	RoleRevokedEvent          = "RoleRevoked"
	OwnershipTransferredEvent = "OwnershipTransferred"
	UpgradeAuthorizedEvent    = "UpgradeAuthorized"
)

type transferEvent struct {
	From  ethcommon.Address
	To    ethcommon.Address
	Value *big.Int
}

type taxUpdatedEvent struct {
	NewTaxRate *big.Int
}

type rewardDistributedEvent struct {
	User   ethcommon.Address
	Amount *big.Int
}

type roleChangedEvent struct {
	Role    uint8
	Account ethcommon.Address
}

type ownershipTransferredEvent struct {
	PreviousOwner ethcommon.Address
	NewOwner      ethcommon.Address
}

type upgradeAuthorizedEvent struct {
	NewImplementation ethcommon.Address
}

func (am *DFXManager) emitTransfer(from, to ethcommon.Address, value *big.Int) {
	am.emit(TransferEvent, &transferEvent{From: from, To: to, Value: value})
}

func (am *DFXManager) emitTaxUpdated(newRate *big.Int) {
	am.emit(TaxUpdatedEvent, &taxUpdatedEvent{NewTaxRate: newRate})
}

func (am *DFXManager) emitRewardDistributed(user ethcommon.Address, amount *big.Int) {
	am.emit(RewardDistributedEvent, &rewardDistributedEvent{User: user, Amount: amount})
}

func (am *DFXManager) emitRoleChanged(eventName string, role uint8, account ethcommon.Address) {
	am.emit(eventName, &roleChangedEvent{Role: role, Account: account})
}

func (am *DFXManager) emitOwnershipTransferred(previousOwner, newOwner ethcommon.Address) {
	am.emit(OwnershipTransferredEvent, &ownershipTransferredEvent{PreviousOwner: previousOwner, NewOwner: newOwner})
}

func (am *DFXManager) emitUpgradeAuthorized(newImplementation ethcommon.Address) {
	am.emit(UpgradeAuthorizedEvent, &upgradeAuthorizedEvent{NewImplementation: newImplementation})
}

func (am *DFXManager) emit(eventName string, eventStruct any) {
	topics, data, err := packer.PackEvent(eventStruct, dfxManagerABI.Events[eventName])
	if err != nil {
		am.logger.Errorf("pack %s event: %v", eventName, err)
		return
	}
	*am.currentLogs = append(*am.currentLogs, common.Log{
		Address: am.account.GetAddress(),
		Topics:  topics,
		Data:    data,
	})
}
