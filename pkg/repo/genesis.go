package repo

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type GenesisConfig struct {
	ChainID uint64 `mapstructure:"chainid" toml:"chainid"`

	// Admin is the initializing caller, it becomes the token owner and is
	// granted both AdminRole and RewardManagerRole.
	Admin string `mapstructure:"admin" toml:"admin"`

	// Treasury receives the whole initial supply.
	Treasury string `mapstructure:"treasury" toml:"treasury"`

	// Reservoir optionally routes collected tax to a separate account.
	// Empty means the token contract's own account backs the reward pool.
	Reservoir string `mapstructure:"reservoir" toml:"reservoir"`

	TaxRateBps uint64 `mapstructure:"tax_rate_bps" toml:"tax_rate_bps"`

	// RewardManagers are extra addresses granted RewardManagerRole by the
	// admin right after initialization.
	RewardManagers []string `mapstructure:"reward_managers" toml:"reward_managers"`

	Token *TokenMeta `mapstructure:"token" toml:"token"`
}

type TokenMeta struct {
	Name     string `mapstructure:"name" toml:"name"`
	Symbol   string `mapstructure:"symbol" toml:"symbol"`
	Decimals uint8  `mapstructure:"decimals" toml:"decimals"`

	// InitialSupply is in whole tokens, scaled by Decimals at genesis.
	InitialSupply string `mapstructure:"initial_supply" toml:"initial_supply"`
}

func DefaultGenesisConfig() *GenesisConfig {
	return &GenesisConfig{
		ChainID:        1356,
		Admin:          DefaultOwnerAddr,
		Treasury:       DefaultTreasuryAddr,
		Reservoir:      "",
		TaxRateBps:     DefaultTaxRateBps,
		RewardManagers: []string{DefaultRewardManagerAddr},
		Token: &TokenMeta{
			Name:          DefaultTokenName,
			Symbol:        DefaultTokenSymbol,
			Decimals:      DefaultTokenDecimals,
			InitialSupply: DefaultInitialSupply,
		},
	}
}

func (g *GenesisConfig) Validate() error {
	if g.Token == nil {
		return errors.New("genesis: token meta is required")
	}
	if !isValidAddress(g.Admin) {
		return errors.Errorf("genesis: invalid admin address: %s", g.Admin)
	}
	if !isValidAddress(g.Treasury) {
		return errors.Errorf("genesis: invalid treasury address: %s", g.Treasury)
	}
	if g.Reservoir != "" && !isValidAddress(g.Reservoir) {
		return errors.Errorf("genesis: invalid reservoir address: %s", g.Reservoir)
	}
	if invalid, found := lo.Find(g.RewardManagers, func(addr string) bool {
		return !isValidAddress(addr)
	}); found {
		return errors.Errorf("genesis: invalid reward manager address: %s", invalid)
	}
	if _, ok := new(big.Int).SetString(g.Token.InitialSupply, 10); !ok {
		return errors.Errorf("genesis: invalid initial supply: %s", g.Token.InitialSupply)
	}
	return nil
}

// InitialSupplyUnits returns the initial supply in base units.
func (g *GenesisConfig) InitialSupplyUnits() *big.Int {
	supply, ok := new(big.Int).SetString(g.Token.InitialSupply, 10)
	if !ok {
		return big.NewInt(0)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.Token.Decimals)), nil)
	return supply.Mul(supply, scale)
}

func isValidAddress(addr string) bool {
	if !ethcommon.IsHexAddress(addr) {
		return false
	}
	return ethcommon.HexToAddress(addr) != (ethcommon.Address{})
}
