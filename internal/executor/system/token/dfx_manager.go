package token

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/access"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/proxy"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
)

var dfxManagerABI *abi.ABI

func init() {
	dmAbi, err := abi.JSON(strings.NewReader(dfxManagerABIData))
	if err != nil {
		panic(err)
	}
	dfxManagerABI = &dmAbi
}

// ABI returns the token contract ABI, used by the dispatcher and the CLI.
func ABI() *abi.ABI {
	return dfxManagerABI
}

var _ common.SystemContract = (*DFXManager)(nil)

// DFXManager is the tax-and-reward token logic. Every balance mutation runs
// through applyUpdate, the single place where tax policy is enforced.
type DFXManager struct {
	*common.ReentrancyGuard

	logger      logrus.FieldLogger
	config      Config
	account     ledger.IAccount
	stateLedger ledger.StateLedger
	msgFrom     ethcommon.Address
	currentLogs *[]common.Log

	roles   *access.RoleController
	ownable *access.Ownable
	gate    *proxy.UpgradeGate
}

func NewDFXManager(cfg *common.SystemContractConfig, tokenConfig Config) *DFXManager {
	return &DFXManager{
		ReentrancyGuard: common.NewReentrancyGuard(),
		logger:          cfg.Logger,
		config:          tokenConfig,
	}
}

func (am *DFXManager) SetContext(ctx *common.VMContext) {
	am.stateLedger = ctx.StateLedger
	am.account = ctx.StateLedger.GetOrCreateAccount(ethcommon.HexToAddress(common.TokenContractAddr))
	am.msgFrom = *ctx.CurrentUser
	am.currentLogs = ctx.CurrentLogs

	am.roles = access.NewRoleController(am.account)
	am.ownable = access.NewOwnable(am.account)
	am.gate = proxy.NewUpgradeGate(am.account, am.ownable)
}

// Initialize runs exactly once. The caller becomes the owner and is granted
// AdminRole and RewardManagerRole, the whole initial supply is minted to the
// treasury and collected tax later accrues to the contract's own account.
func (am *DFXManager) Initialize(treasury ethcommon.Address, initialTaxRate *big.Int) error {
	return am.initialize(treasury, ethcommon.Address{}, initialTaxRate)
}

// InitializeWithReservoir is the variant that parks collected tax on a
// separate reservoir account instead of the contract's own account.
func (am *DFXManager) InitializeWithReservoir(treasury, reservoir ethcommon.Address, initialTaxRate *big.Int) error {
	return am.initialize(treasury, reservoir, initialTaxRate)
}

func (am *DFXManager) initialize(treasury, reservoir ethcommon.Address, initialTaxRate *big.Int) error {
	initialized := common.NewVMSlot[bool](am.account, InitializedKey)
	if initialized.Has() {
		return ErrAlreadyInitialized
	}
	if common.IsZeroAddress(treasury) {
		return errors.Wrap(ErrInvalidAddress, "treasury")
	}
	if initialTaxRate == nil || initialTaxRate.Sign() < 0 {
		return ErrValue
	}
	if initialTaxRate.Cmp(big.NewInt(MaxTaxRateBps)) > 0 {
		return errors.Wrapf(ErrRateTooHigh, "initial tax rate %s", initialTaxRate)
	}

	if err := initialized.Put(true); err != nil {
		return err
	}
	if err := am.ownable.SetOwner(am.msgFrom); err != nil {
		return err
	}
	if err := am.roles.GrantRole(access.RoleAdmin, am.msgFrom); err != nil {
		return err
	}
	if err := am.roles.GrantRole(access.RoleRewardManager, am.msgFrom); err != nil {
		return err
	}

	am.account.SetState([]byte(NameKey), []byte(am.config.Name))
	am.account.SetState([]byte(SymbolKey), []byte(am.config.Symbol))
	am.account.SetState([]byte(DecimalsKey), []byte{am.config.Decimals})

	taxRate := common.NewVMSlot[uint64](am.account, TaxRateKey)
	if err := taxRate.Put(initialTaxRate.Uint64()); err != nil {
		return err
	}

	collector := ethcommon.HexToAddress(common.TokenContractAddr)
	if !common.IsZeroAddress(reservoir) {
		collector = reservoir
	}
	if err := common.NewVMSlot[ethcommon.Address](am.account, TaxCollectorKey).Put(collector); err != nil {
		return err
	}

	supply := am.config.InitialSupply
	if supply == nil {
		supply = big.NewInt(0)
	}
	if err := am.applyUpdate(ethcommon.Address{}, treasury, supply); err != nil {
		return err
	}

	am.logger.WithFields(logrus.Fields{
		"owner":    am.msgFrom,
		"treasury": treasury,
		"taxRate":  initialTaxRate,
		"supply":   supply,
	}).Info("token initialized")
	return nil
}

// Transfer moves value from the caller to the recipient, taxed per the
// current rate. A zero recipient is rejected, burning is not exposed here.
func (am *DFXManager) Transfer(to ethcommon.Address, value *big.Int) (bool, error) {
	if err := am.ensureInitialized(); err != nil {
		return false, err
	}
	if common.IsZeroAddress(to) {
		return false, errors.Wrap(ErrInvalidAddress, "transfer recipient")
	}
	if err := am.applyUpdate(am.msgFrom, to, value); err != nil {
		return false, err
	}
	return true, nil
}

// SetTaxRate is owner-only, the rate is capped at MaxTaxRateBps. Zero
// disables the tax entirely.
func (am *DFXManager) SetTaxRate(newRate *big.Int) error {
	if err := am.ensureInitialized(); err != nil {
		return err
	}
	if err := am.ownable.CheckOwner(am.msgFrom); err != nil {
		return err
	}
	if newRate == nil || newRate.Sign() < 0 {
		return ErrValue
	}
	if newRate.Cmp(big.NewInt(MaxTaxRateBps)) > 0 {
		return errors.Wrapf(ErrRateTooHigh, "tax rate %s", newRate)
	}

	if err := common.NewVMSlot[uint64](am.account, TaxRateKey).Put(newRate.Uint64()); err != nil {
		return err
	}
	am.emitTaxUpdated(newRate)
	am.logger.Infof("tax rate set to %s bps by %s", newRate, am.msgFrom)
	return nil
}

// DistributeReward pays amount out of the reward pool to user. It is
// restricted to RewardManagerRole and reentrancy-guarded; the pool is
// decremented before tokens move so the accounting is already consistent if
// the transfer step could reenter.
func (am *DFXManager) DistributeReward(user ethcommon.Address, amount *big.Int) error {
	if err := am.ensureInitialized(); err != nil {
		return err
	}
	if err := am.roles.CheckRole(access.RoleRewardManager, am.msgFrom); err != nil {
		return err
	}
	if common.IsZeroAddress(user) {
		return errors.Wrap(ErrInvalidAddress, "reward user")
	}
	if err := checkValue(amount); err != nil {
		return err
	}

	if err := am.Enter(); err != nil {
		return err
	}
	defer am.Exit()

	pool := am.rewardPool()
	if pool.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientPool, "pool %s, requested %s", pool, amount)
	}

	snapshot := am.stateLedger.Snapshot()
	err := func() error {
		if err := am.setRewardPool(new(big.Int).Sub(pool, amount)); err != nil {
			return err
		}
		return am.move(am.taxCollector(), user, amount)
	}()
	if err != nil {
		am.stateLedger.RevertToSnapshot(snapshot)
		return err
	}

	am.emitRewardDistributed(user, amount)
	am.logger.Infof("distributed %s to %s by %s", amount, user, am.msgFrom)
	return nil
}

// GrantRole is restricted to AdminRole holders.
func (am *DFXManager) GrantRole(role uint8, account ethcommon.Address) error {
	if err := am.ensureInitialized(); err != nil {
		return err
	}
	if err := am.roles.CheckRole(access.RoleAdmin, am.msgFrom); err != nil {
		return err
	}
	if err := am.roles.GrantRole(access.Role(role), account); err != nil {
		return err
	}
	am.emitRoleChanged(RoleGrantedEvent, role, account)
	return nil
}

// RevokeRole is restricted to AdminRole holders.
func (am *DFXManager) RevokeRole(role uint8, account ethcommon.Address) error {
	if err := am.ensureInitialized(); err != nil {
		return err
	}
	if err := am.roles.CheckRole(access.RoleAdmin, am.msgFrom); err != nil {
		return err
	}
	if err := am.roles.RevokeRole(access.Role(role), account); err != nil {
		return err
	}
	am.emitRoleChanged(RoleRevokedEvent, role, account)
	return nil
}

func (am *DFXManager) TransferOwnership(newOwner ethcommon.Address) error {
	if err := am.ensureInitialized(); err != nil {
		return err
	}
	previous := am.ownable.Owner()
	if err := am.ownable.TransferOwnership(am.msgFrom, newOwner); err != nil {
		return err
	}
	am.emitOwnershipTransferred(previous, newOwner)
	return nil
}

// AuthorizeUpgrade is consulted by the external proxy before it swaps the
// implementation pointer. Owner-only.
func (am *DFXManager) AuthorizeUpgrade(newImplementation ethcommon.Address) error {
	if err := am.ensureInitialized(); err != nil {
		return err
	}
	if err := am.gate.Authorize(am.msgFrom, newImplementation); err != nil {
		return err
	}
	am.emitUpgradeAuthorized(newImplementation)
	return nil
}

func (am *DFXManager) BalanceOf(account ethcommon.Address) *big.Int {
	return am.stateLedger.GetBalance(account)
}

func (am *DFXManager) TotalSupply() *big.Int {
	ok, totalSupply := am.account.GetState([]byte(TotalSupplyKey))
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(totalSupply)
}

func (am *DFXManager) TaxRate() *big.Int {
	return new(big.Int).SetUint64(am.taxRateBps())
}

func (am *DFXManager) RewardPool() *big.Int {
	return am.rewardPool()
}

func (am *DFXManager) Owner() ethcommon.Address {
	return am.ownable.Owner()
}

func (am *DFXManager) HasRole(role uint8, account ethcommon.Address) bool {
	return am.roles.HasRole(access.Role(role), account)
}

func (am *DFXManager) Name() string {
	ok, name := am.account.GetState([]byte(NameKey))
	if !ok {
		return ""
	}
	return string(name)
}

func (am *DFXManager) Symbol() string {
	ok, symbol := am.account.GetState([]byte(SymbolKey))
	if !ok {
		return ""
	}
	return string(symbol)
}

func (am *DFXManager) Decimals() uint8 {
	ok, decimals := am.account.GetState([]byte(DecimalsKey))
	if !ok || len(decimals) == 0 {
		return 0
	}
	return decimals[0]
}

// applyUpdate is the choke point every balance mutation must pass through.
// Mint (zero from), burn (zero to), collector-outgoing and zero-rate
// transfers move the full amount untaxed, anything else is split into tax
// and net. Collector-outgoing transfers may only spend what the reward pool
// does not reserve. Either the whole update applies or none of it does.
func (am *DFXManager) applyUpdate(from, to ethcommon.Address, value *big.Int) error {
	if err := checkValue(value); err != nil {
		return err
	}

	received := value
	snapshot := am.stateLedger.Snapshot()
	err := func() error {
		if common.IsZeroAddress(from) {
			return am.mint(to, value)
		}
		if common.IsZeroAddress(to) {
			return am.burn(from, value)
		}

		collector := am.taxCollector()
		if from == collector {
			// the collector's balance backs the reward pool, only the
			// remainder above the pool is spendable and it moves untaxed
			available := new(big.Int).Sub(am.stateLedger.GetBalance(from), am.rewardPool())
			if available.Cmp(value) < 0 {
				return errors.Wrap(ErrInsufficientBalance, "collector balance reserved for reward pool")
			}
			return am.move(from, to, value)
		}

		rate := am.taxRateBps()
		if rate == 0 {
			return am.move(from, to, value)
		}

		tax, net := splitTax(value, rate)
		if tax.Sign() > 0 {
			if err := am.move(from, collector, tax); err != nil {
				return err
			}
			if err := am.setRewardPool(new(big.Int).Add(am.rewardPool(), tax)); err != nil {
				return err
			}
			am.emitTransfer(from, collector, tax)
		}
		received = net
		return am.move(from, to, net)
	}()
	if err != nil {
		am.stateLedger.RevertToSnapshot(snapshot)
		return err
	}

	am.emitTransfer(from, to, received)
	return nil
}

func (am *DFXManager) mint(to ethcommon.Address, value *big.Int) error {
	if common.IsZeroAddress(to) {
		return errors.Wrap(ErrInvalidAddress, "mint recipient")
	}
	if err := am.changeTotalSupply(value, true); err != nil {
		return err
	}
	am.stateLedger.GetOrCreateAccount(to).AddBalance(value)
	return nil
}

func (am *DFXManager) burn(from ethcommon.Address, value *big.Int) error {
	fromAcc := am.stateLedger.GetOrCreateAccount(from)
	if fromAcc.GetBalance().Cmp(value) < 0 {
		return ErrInsufficientBalance
	}
	if err := am.changeTotalSupply(value, false); err != nil {
		return err
	}
	fromAcc.SubBalance(value)
	return nil
}

func (am *DFXManager) move(from, to ethcommon.Address, value *big.Int) error {
	sender := am.stateLedger.GetOrCreateAccount(from)
	recipient := am.stateLedger.GetOrCreateAccount(to)

	if sender.GetBalance().Cmp(value) < 0 {
		return ErrInsufficientBalance
	}

	sender.SubBalance(value)
	recipient.AddBalance(value)
	return nil
}

func (am *DFXManager) changeTotalSupply(amount *big.Int, increase bool) error {
	if am.account.GetAddress() != ethcommon.HexToAddress(common.TokenContractAddr) {
		return ErrContractAccount
	}

	totalSupply := am.TotalSupply()
	if increase {
		totalSupply.Add(totalSupply, amount)
	} else {
		totalSupply.Sub(totalSupply, amount)
		if totalSupply.Sign() < 0 {
			return ErrTotalSupply
		}
	}

	am.account.SetState([]byte(TotalSupplyKey), totalSupply.Bytes())
	return nil
}

func (am *DFXManager) ensureInitialized() error {
	if !common.NewVMSlot[bool](am.account, InitializedKey).Has() {
		return ErrNotInitialized
	}
	return nil
}

func (am *DFXManager) taxRateBps() uint64 {
	return common.NewVMSlot[uint64](am.account, TaxRateKey).GetOrDefault(0)
}

func (am *DFXManager) taxCollector() ethcommon.Address {
	return common.NewVMSlot[ethcommon.Address](am.account, TaxCollectorKey).
		GetOrDefault(ethcommon.HexToAddress(common.TokenContractAddr))
}

func (am *DFXManager) rewardPool() *big.Int {
	ok, pool := am.account.GetState([]byte(RewardPoolKey))
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(pool)
}

func (am *DFXManager) setRewardPool(pool *big.Int) error {
	if pool.Sign() < 0 {
		return errors.Wrap(ErrInsufficientPool, "pool below zero")
	}
	am.account.SetState([]byte(RewardPoolKey), pool.Bytes())
	return nil
}
