package token

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/access"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
)

func TestInitialize(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Nil(t, env.manager.Initialize(treasury, big.NewInt(200)))

	assert.Equal(t, units(100_000_000), env.manager.BalanceOf(treasury))
	assert.Equal(t, units(100_000_000), env.manager.TotalSupply())
	assert.Equal(t, big.NewInt(200), env.manager.TaxRate())
	assert.Equal(t, admin, env.manager.Owner())
	assert.True(t, env.manager.HasRole(uint8(access.RoleAdmin), admin))
	assert.True(t, env.manager.HasRole(uint8(access.RoleRewardManager), admin))

	assert.Equal(t, "Dyfusion", env.manager.Name())
	assert.Equal(t, "DFX", env.manager.Symbol())
	assert.Equal(t, uint8(18), env.manager.Decimals())
}

func TestInitializeOnlyOnce(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	err := env.manager.Initialize(treasury, big.NewInt(100))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitializeRejectsBadInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	assert.ErrorIs(t, env.manager.Initialize(ethcommon.Address{}, big.NewInt(200)), ErrInvalidAddress)
	assert.ErrorIs(t, env.manager.Initialize(treasury, big.NewInt(MaxTaxRateBps+1)), ErrRateTooHigh)
	assert.ErrorIs(t, env.manager.Initialize(treasury, nil), ErrValue)

	// failed attempts must not flip the initialization flag
	require.Nil(t, env.manager.Initialize(treasury, big.NewInt(200)))
}

func TestInitializeWithReservoir(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Nil(t, env.manager.InitializeWithReservoir(treasury, carol, big.NewInt(200)))

	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(100))
	require.Nil(t, err)

	// tax parks on the reservoir, not the contract account
	assert.Equal(t, big.NewInt(2), env.manager.BalanceOf(carol))
	assert.Equal(t, big.NewInt(0), env.manager.BalanceOf(ethcommon.HexToAddress(common.TokenContractAddr)))
	assert.Equal(t, big.NewInt(2), env.manager.RewardPool())
}

func TestMethodsRequireInitialization(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.manager.Transfer(alice, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, env.manager.SetTaxRate(big.NewInt(100)), ErrNotInitialized)
	assert.ErrorIs(t, env.manager.DistributeReward(alice, big.NewInt(1)), ErrNotInitialized)
	assert.ErrorIs(t, env.manager.GrantRole(uint8(access.RoleAdmin), alice), ErrNotInitialized)
	assert.ErrorIs(t, env.manager.TransferOwnership(alice), ErrNotInitialized)
	assert.ErrorIs(t, env.manager.AuthorizeUpgrade(alice), ErrNotInitialized)
}

func TestTransferAppliesTax(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)

	ok, err := env.manager.Transfer(alice, big.NewInt(100))
	require.Nil(t, err)
	assert.True(t, ok)

	assert.Equal(t, big.NewInt(98), env.manager.BalanceOf(alice))
	assert.Equal(t, big.NewInt(2), env.manager.BalanceOf(ethcommon.HexToAddress(common.TokenContractAddr)))
	assert.Equal(t, big.NewInt(2), env.manager.RewardPool())
	assert.Equal(t, new(big.Int).Sub(units(100_000_000), big.NewInt(100)), env.manager.BalanceOf(treasury))

	// tax never changes supply, only redistributes it
	assert.Equal(t, units(100_000_000), env.manager.TotalSupply())
}

func TestTransferRoundsTaxDown(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)

	// 2% of 49 is 0.98, truncated to zero
	_, err := env.manager.Transfer(alice, big.NewInt(49))
	require.Nil(t, err)

	assert.Equal(t, big.NewInt(49), env.manager.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), env.manager.RewardPool())
}

func TestTransferZeroRate(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 0)
	env.setUser(treasury)

	_, err := env.manager.Transfer(alice, big.NewInt(100))
	require.Nil(t, err)

	assert.Equal(t, big.NewInt(100), env.manager.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), env.manager.RewardPool())
}

func TestTransferMaxRate(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, MaxTaxRateBps)
	env.setUser(treasury)

	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)

	assert.Equal(t, big.NewInt(950), env.manager.BalanceOf(alice))
	assert.Equal(t, big.NewInt(50), env.manager.RewardPool())
}

func TestTransferZeroAmount(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(alice)

	ok, err := env.manager.Transfer(bob, big.NewInt(0))
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(0), env.manager.BalanceOf(bob))
}

func TestTransferRejectsZeroRecipient(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	supply := env.manager.TotalSupply()

	_, err := env.manager.Transfer(ethcommon.Address{}, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// no burn path through transfer, supply and balance stay put
	assert.Equal(t, supply, env.manager.TotalSupply())
	assert.Equal(t, units(100_000_000), env.manager.BalanceOf(treasury))
}

func TestCollectorTransferKeepsPoolBacked(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Nil(t, env.manager.InitializeWithReservoir(treasury, carol, big.NewInt(200)))

	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(5000))
	require.Nil(t, err)
	_, err = env.manager.Transfer(carol, big.NewInt(1000))
	require.Nil(t, err)

	// 100 + 20 tax collected, carol also received the 980 net leg
	require.Equal(t, big.NewInt(120), env.manager.RewardPool())
	require.Equal(t, big.NewInt(1100), env.manager.BalanceOf(carol))

	// the collector spends the unreserved remainder untaxed, the pool
	// neither grows nor loses its backing
	env.setUser(carol)
	_, err = env.manager.Transfer(bob, big.NewInt(980))
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(980), env.manager.BalanceOf(bob))
	assert.Equal(t, big.NewInt(120), env.manager.RewardPool())
	assert.Equal(t, big.NewInt(120), env.manager.BalanceOf(carol))

	// the reserved part is not spendable
	_, err = env.manager.Transfer(bob, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, big.NewInt(120), env.manager.BalanceOf(carol))

	// the pool stays fully backed and distributable
	env.setUser(admin)
	require.Nil(t, env.manager.DistributeReward(alice, big.NewInt(120)))
	assert.Equal(t, big.NewInt(0), env.manager.RewardPool())
	assert.Equal(t, big.NewInt(0), env.manager.BalanceOf(carol))
}

func TestTransferRejectsNegativeAmount(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)

	_, err := env.manager.Transfer(alice, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrValue)
}

func TestTransferInsufficientBalanceIsAtomic(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(100))
	require.Nil(t, err)

	// alice holds 98, enough for the 2-unit tax of a 100-unit transfer but
	// not the 98-unit net on top of it
	env.setUser(alice)
	_, err = env.manager.Transfer(bob, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// the already-moved tax must be rolled back with the rest
	assert.Equal(t, big.NewInt(98), env.manager.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), env.manager.BalanceOf(bob))
	assert.Equal(t, big.NewInt(2), env.manager.RewardPool())
	assert.Equal(t, big.NewInt(2), env.manager.BalanceOf(ethcommon.HexToAddress(common.TokenContractAddr)))
}

func TestSetTaxRate(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	require.Nil(t, env.manager.SetTaxRate(big.NewInt(300)))
	assert.Equal(t, big.NewInt(300), env.manager.TaxRate())

	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(100))
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(97), env.manager.BalanceOf(alice))
}

func TestSetTaxRateBounds(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	assert.ErrorIs(t, env.manager.SetTaxRate(big.NewInt(MaxTaxRateBps+1)), ErrRateTooHigh)
	require.Nil(t, env.manager.SetTaxRate(big.NewInt(MaxTaxRateBps)))
	require.Nil(t, env.manager.SetTaxRate(big.NewInt(0)))
	assert.ErrorIs(t, env.manager.SetTaxRate(big.NewInt(-1)), ErrValue)
	assert.ErrorIs(t, env.manager.SetTaxRate(nil), ErrValue)
}

func TestSetTaxRateOwnerOnly(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(alice)
	assert.ErrorIs(t, env.manager.SetTaxRate(big.NewInt(300)), access.ErrUnauthorized)
	assert.Equal(t, big.NewInt(200), env.manager.TaxRate())
}

func TestDistributeReward(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)
	require.Equal(t, big.NewInt(20), env.manager.RewardPool())

	env.setUser(admin)
	before := env.manager.BalanceOf(alice)
	require.Nil(t, env.manager.DistributeReward(alice, big.NewInt(2)))

	// the payout is not taxed, the user gains exactly what was distributed
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(2)), env.manager.BalanceOf(alice))
	assert.Equal(t, big.NewInt(18), env.manager.RewardPool())
	assert.Equal(t, big.NewInt(18), env.manager.BalanceOf(ethcommon.HexToAddress(common.TokenContractAddr)))
}

func TestDistributeRewardRequiresRole(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)

	env.setUser(alice)
	assert.ErrorIs(t, env.manager.DistributeReward(alice, big.NewInt(1)), access.ErrUnauthorized)
}

func TestDistributeRewardPoolBound(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)
	require.Equal(t, big.NewInt(20), env.manager.RewardPool())

	env.setUser(admin)
	assert.ErrorIs(t, env.manager.DistributeReward(alice, big.NewInt(21)), ErrInsufficientPool)
	assert.Equal(t, big.NewInt(20), env.manager.RewardPool())

	// draining the pool exactly is fine
	require.Nil(t, env.manager.DistributeReward(alice, big.NewInt(20)))
	assert.Equal(t, big.NewInt(0), env.manager.RewardPool())
}

func TestDistributeRewardRejectsBadInput(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	assert.ErrorIs(t, env.manager.DistributeReward(ethcommon.Address{}, big.NewInt(1)), ErrInvalidAddress)
	assert.ErrorIs(t, env.manager.DistributeReward(alice, big.NewInt(-1)), ErrValue)
	assert.ErrorIs(t, env.manager.DistributeReward(alice, nil), ErrValue)
}

func TestDistributeRewardReentrancy(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)

	// simulate a nested call that arrives while a distribution is in flight
	env.setUser(admin)
	require.Nil(t, env.manager.Enter())
	assert.ErrorIs(t, env.manager.DistributeReward(alice, big.NewInt(1)), common.ErrReentrancyDetected)
	env.manager.Exit()

	require.Nil(t, env.manager.DistributeReward(alice, big.NewInt(1)))
}

func TestGrantAndRevokeRole(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	require.Nil(t, env.manager.GrantRole(uint8(access.RoleRewardManager), carol))
	assert.True(t, env.manager.HasRole(uint8(access.RoleRewardManager), carol))

	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)

	env.setUser(carol)
	require.Nil(t, env.manager.DistributeReward(alice, big.NewInt(1)))

	env.setUser(admin)
	require.Nil(t, env.manager.RevokeRole(uint8(access.RoleRewardManager), carol))
	assert.False(t, env.manager.HasRole(uint8(access.RoleRewardManager), carol))

	env.setUser(carol)
	assert.ErrorIs(t, env.manager.DistributeReward(alice, big.NewInt(1)), access.ErrUnauthorized)
}

func TestGrantRoleAdminOnly(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(alice)
	assert.ErrorIs(t, env.manager.GrantRole(uint8(access.RoleRewardManager), alice), access.ErrUnauthorized)
	assert.ErrorIs(t, env.manager.RevokeRole(uint8(access.RoleRewardManager), admin), access.ErrUnauthorized)
}

func TestGrantUnknownRole(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	assert.ErrorIs(t, env.manager.GrantRole(42, alice), access.ErrUnknownRole)
	assert.False(t, env.manager.HasRole(42, alice))
}

func TestTransferOwnership(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	require.Nil(t, env.manager.TransferOwnership(carol))
	assert.Equal(t, carol, env.manager.Owner())

	// the old owner loses the privilege immediately
	assert.ErrorIs(t, env.manager.SetTaxRate(big.NewInt(100)), access.ErrUnauthorized)

	env.setUser(carol)
	require.Nil(t, env.manager.SetTaxRate(big.NewInt(100)))
}

func TestTransferOwnershipRejectsZeroAddress(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	assert.ErrorIs(t, env.manager.TransferOwnership(ethcommon.Address{}), access.ErrInvalidOwner)
	assert.Equal(t, admin, env.manager.Owner())
}

func TestAuthorizeUpgrade(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)

	env.setUser(alice)
	assert.ErrorIs(t, env.manager.AuthorizeUpgrade(carol), access.ErrUnauthorized)

	env.setUser(admin)
	require.Nil(t, env.manager.AuthorizeUpgrade(carol))
}

func TestSetTaxRateEmitsEvent(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.logs = env.logs[:0]

	require.Nil(t, env.manager.SetTaxRate(big.NewInt(300)))

	require.Len(t, env.logs, 1)
	event := dfxManagerABI.Events[TaxUpdatedEvent]
	assert.Equal(t, event.ID, env.logs[0].Topics[0])
	unpacked, err := event.Inputs.Unpack(env.logs[0].Data)
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(300), unpacked[0])
}

func TestDistributeRewardEmitsEvent(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.setUser(treasury)
	_, err := env.manager.Transfer(alice, big.NewInt(1000))
	require.Nil(t, err)

	env.setUser(admin)
	env.logs = env.logs[:0]
	require.Nil(t, env.manager.DistributeReward(alice, big.NewInt(5)))

	require.Len(t, env.logs, 1)
	event := dfxManagerABI.Events[RewardDistributedEvent]
	assert.Equal(t, event.ID, env.logs[0].Topics[0])
	assert.Equal(t, alice.Hash(), env.logs[0].Topics[1])
	unpacked, err := event.Inputs.Unpack(env.logs[0].Data)
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(5), unpacked[0])
}

func TestTransferEmitsEvents(t *testing.T) {
	t.Parallel()

	env := initializedEnv(t, 200)
	env.logs = env.logs[:0]
	env.setUser(treasury)

	_, err := env.manager.Transfer(alice, big.NewInt(100))
	require.Nil(t, err)

	// one Transfer for the tax leg, one for the net leg
	require.Len(t, env.logs, 2)
	transferID := dfxManagerABI.Events[TransferEvent].ID
	assert.Equal(t, transferID, env.logs[0].Topics[0])
	assert.Equal(t, transferID, env.logs[1].Topics[0])
	assert.Equal(t, alice.Hash(), env.logs[1].Topics[2])
}
