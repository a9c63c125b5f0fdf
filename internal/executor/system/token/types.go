package token

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/dyfusion/dyfusion-ledger/pkg/repo"
)

const (
	// TaxRateDenominator expresses rates in basis points.
	TaxRateDenominator = 10000

	// MaxTaxRateBps caps the transfer tax at 5%.
	MaxTaxRateBps = 500
)

var (
	ErrValue               = errors.New("input value below zero")
	ErrInsufficientBalance = errors.New("value exceeds balance")
	ErrInsufficientPool    = errors.New("value exceeds reward pool")
	ErrInvalidAddress      = errors.New("zero address where a real account is required")
	ErrRateTooHigh         = errors.New("tax rate exceeds the cap")
	ErrAlreadyInitialized  = errors.New("already initialized")
	ErrNotInitialized      = errors.New("not initialized")
	ErrTotalSupply         = errors.New("total supply below zero")
	ErrContractAccount     = errors.New("account is not the DFX token contract account")
)

// Storage keys of the token contract account. The layout is append-only
// across upgrades: never reorder, resize or remove a key once deployed, only
// add new ones at the end.
const (
	NameKey         = "nameKey"
	SymbolKey       = "symbolKey"
	DecimalsKey     = "decimalsKey"
	TotalSupplyKey  = "totalSupplyKey"
	InitializedKey  = "initializedKey"
	TaxRateKey      = "taxRateKey"
	TaxCollectorKey = "taxCollectorKey"
	RewardPoolKey   = "rewardPoolKey"
)

type Config struct {
	Name     string
	Symbol   string
	Decimals uint8

	// InitialSupply is in base units, minted to the treasury once.
	InitialSupply *big.Int

	InitialTaxRate uint64

	Treasury ethcommon.Address

	// Reservoir parks collected tax when non-zero, otherwise the contract's
	// own account backs the reward pool.
	Reservoir ethcommon.Address

	// RewardManagers are granted RewardManagerRole by the admin at genesis.
	RewardManagers []ethcommon.Address
}

// GenerateGenesisTokenConfig maps the genesis file onto a token config.
func GenerateGenesisTokenConfig(genesis *repo.GenesisConfig) (Config, error) {
	if err := genesis.Validate(); err != nil {
		return Config{}, err
	}
	if genesis.TaxRateBps > MaxTaxRateBps {
		return Config{}, errors.Wrapf(ErrRateTooHigh, "genesis tax rate %d", genesis.TaxRateBps)
	}

	var reservoir ethcommon.Address
	if genesis.Reservoir != "" {
		reservoir = ethcommon.HexToAddress(genesis.Reservoir)
	}

	return Config{
		Name:           genesis.Token.Name,
		Symbol:         genesis.Token.Symbol,
		Decimals:       genesis.Token.Decimals,
		InitialSupply:  genesis.InitialSupplyUnits(),
		InitialTaxRate: genesis.TaxRateBps,
		Treasury:       ethcommon.HexToAddress(genesis.Treasury),
		Reservoir:      reservoir,
		RewardManagers: lo.Map(genesis.RewardManagers, func(addr string, _ int) ethcommon.Address {
			return ethcommon.HexToAddress(addr)
		}),
	}, nil
}

func checkValue(value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrValue
	}
	return nil
}
