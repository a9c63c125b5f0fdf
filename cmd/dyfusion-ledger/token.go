package main

import (
	"fmt"
	"math/big"
	"reflect"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/dyfusion/dyfusion-ledger/cmd/dyfusion-ledger/common"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system"
	syscommon "github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/token"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
	"github.com/dyfusion/dyfusion-ledger/pkg/repo"
)

var tokenArgs = struct {
	From    string
	To      string
	Address string
	Account string
	Amount  string
	Rate    uint64
	Role    uint
}{}

func fromFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "from",
		Usage:       "Caller address",
		Destination: &tokenArgs.From,
		Required:    true,
	}
}

var tokenCMD = &cli.Command{
	Name:  "token",
	Usage: "The token query and exec commands",
	Subcommands: []*cli.Command{
		{
			Name:   "info",
			Usage:  "Show token metadata, supply, tax rate and reward pool",
			Action: tokenInfo,
		},
		{
			Name:   "balance",
			Usage:  "Show the balance of an account",
			Action: tokenBalance,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "address",
					Usage:       "Account address",
					Destination: &tokenArgs.Address,
					Required:    true,
				},
			},
		},
		{
			Name:   "transfer",
			Usage:  "Transfer tokens, taxed per the current rate",
			Action: tokenTransfer,
			Flags: []cli.Flag{
				fromFlag(),
				&cli.StringFlag{
					Name:        "to",
					Usage:       "Recipient address",
					Destination: &tokenArgs.To,
					Required:    true,
				},
				&cli.StringFlag{
					Name:        "amount",
					Usage:       "Amount in base units",
					Destination: &tokenArgs.Amount,
					Required:    true,
				},
			},
		},
		{
			Name:   "set-tax-rate",
			Usage:  "Set the transfer tax rate in basis points(owner only)",
			Action: tokenSetTaxRate,
			Flags: []cli.Flag{
				fromFlag(),
				&cli.Uint64Flag{
					Name:        "rate",
					Usage:       "Tax rate in basis points",
					Destination: &tokenArgs.Rate,
					Required:    true,
				},
			},
		},
		{
			Name:   "distribute",
			Usage:  "Distribute reward pool tokens(reward manager only)",
			Action: tokenDistribute,
			Flags: []cli.Flag{
				fromFlag(),
				&cli.StringFlag{
					Name:        "to",
					Usage:       "Reward recipient address",
					Destination: &tokenArgs.To,
					Required:    true,
				},
				&cli.StringFlag{
					Name:        "amount",
					Usage:       "Amount in base units",
					Destination: &tokenArgs.Amount,
					Required:    true,
				},
			},
		},
		{
			Name:   "grant-role",
			Usage:  "Grant a role to an account(admin only), 0 admin, 1 reward manager",
			Action: tokenGrantRole,
			Flags:  roleFlags(),
		},
		{
			Name:   "revoke-role",
			Usage:  "Revoke a role from an account(admin only), 0 admin, 1 reward manager",
			Action: tokenRevokeRole,
			Flags:  roleFlags(),
		},
	},
}

func roleFlags() []cli.Flag {
	return []cli.Flag{
		fromFlag(),
		&cli.UintFlag{
			Name:        "role",
			Usage:       "Role number",
			Destination: &tokenArgs.Role,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "account",
			Usage:       "Account address",
			Destination: &tokenArgs.Account,
			Required:    true,
		},
	}
}

func tokenInfo(ctx *cli.Context) error {
	nvm, lg, r, err := openVM(ctx)
	if err != nil || nvm == nil {
		return err
	}
	defer func() {
		_ = lg.Close()
	}()

	caller := ethcommon.HexToAddress(r.GenesisConfig.Admin)
	info := struct {
		Name        string
		Symbol      string
		Decimals    uint8
		TotalSupply string
		TaxRateBps  string
		RewardPool  string
		Owner       string
	}{}

	if err := queryInto(nvm, caller, "name", &info.Name); err != nil {
		return err
	}
	if err := queryInto(nvm, caller, "symbol", &info.Symbol); err != nil {
		return err
	}
	if err := queryInto(nvm, caller, "decimals", &info.Decimals); err != nil {
		return err
	}
	var totalSupply, taxRate, rewardPool *big.Int
	if err := queryInto(nvm, caller, "totalSupply", &totalSupply); err != nil {
		return err
	}
	if err := queryInto(nvm, caller, "taxRate", &taxRate); err != nil {
		return err
	}
	if err := queryInto(nvm, caller, "rewardPool", &rewardPool); err != nil {
		return err
	}
	var owner ethcommon.Address
	if err := queryInto(nvm, caller, "owner", &owner); err != nil {
		return err
	}
	info.TotalSupply = totalSupply.String()
	info.TaxRateBps = taxRate.String()
	info.RewardPool = rewardPool.String()
	info.Owner = owner.Hex()

	return common.Pretty(info)
}

func tokenBalance(ctx *cli.Context) error {
	nvm, lg, _, err := openVM(ctx)
	if err != nil || nvm == nil {
		return err
	}
	defer func() {
		_ = lg.Close()
	}()

	addr, err := parseAddress(tokenArgs.Address)
	if err != nil {
		return err
	}
	var balance *big.Int
	if err := queryInto(nvm, addr, "balanceOf", &balance, addr); err != nil {
		return err
	}
	fmt.Println(balance.String())
	return nil
}

func tokenTransfer(ctx *cli.Context) error {
	return execTokenCall(ctx, func() (ethcommon.Address, string, []any, error) {
		from, err := parseAddress(tokenArgs.From)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		to, err := parseAddress(tokenArgs.To)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		amount, err := parseAmount(tokenArgs.Amount)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		return from, "transfer", []any{to, amount}, nil
	})
}

func tokenSetTaxRate(ctx *cli.Context) error {
	return execTokenCall(ctx, func() (ethcommon.Address, string, []any, error) {
		from, err := parseAddress(tokenArgs.From)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		return from, "setTaxRate", []any{new(big.Int).SetUint64(tokenArgs.Rate)}, nil
	})
}

func tokenDistribute(ctx *cli.Context) error {
	return execTokenCall(ctx, func() (ethcommon.Address, string, []any, error) {
		from, err := parseAddress(tokenArgs.From)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		to, err := parseAddress(tokenArgs.To)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		amount, err := parseAmount(tokenArgs.Amount)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		return from, "distributeReward", []any{to, amount}, nil
	})
}

func tokenGrantRole(ctx *cli.Context) error {
	return execRoleCall(ctx, "grantRole")
}

func tokenRevokeRole(ctx *cli.Context) error {
	return execRoleCall(ctx, "revokeRole")
}

func execRoleCall(ctx *cli.Context, methodName string) error {
	return execTokenCall(ctx, func() (ethcommon.Address, string, []any, error) {
		from, err := parseAddress(tokenArgs.From)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		account, err := parseAddress(tokenArgs.Account)
		if err != nil {
			return ethcommon.Address{}, "", nil, err
		}
		return from, methodName, []any{uint8(tokenArgs.Role), account}, nil
	})
}

func execTokenCall(ctx *cli.Context, build func() (ethcommon.Address, string, []any, error)) error {
	nvm, lg, _, err := openVM(ctx)
	if err != nil || nvm == nil {
		return err
	}
	defer func() {
		_ = lg.Close()
	}()

	from, methodName, args, err := build()
	if err != nil {
		return err
	}

	tokenAddr := ethcommon.HexToAddress(syscommon.TokenContractAddr)
	data, err := nvm.PackInputArgs(tokenAddr.Hex(), methodName, args...)
	if err != nil {
		return err
	}
	result, err := nvm.Run(&system.Message{From: from, To: tokenAddr, Data: data})
	if err != nil {
		return err
	}
	if result.Err != nil {
		return errors.Wrapf(result.Err, "%s reverted", methodName)
	}

	if err := lg.Commit(); err != nil {
		return err
	}
	fmt.Printf("%s succeeded, used gas %d\n", methodName, result.UsedGas)
	return nil
}

func openVM(ctx *cli.Context) (*system.NativeVM, *ledger.StateLedgerImpl, *repo.Repo, error) {
	r, err := loadRepo(ctx)
	if err != nil || r == nil {
		return nil, nil, nil, err
	}
	if err := common.InitLogger(r); err != nil {
		return nil, nil, nil, err
	}

	tokenConfig, err := token.GenerateGenesisTokenConfig(r.GenesisConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	lg, err := ledger.New(r)
	if err != nil {
		return nil, nil, nil, err
	}

	nvm := system.New(tokenConfig)
	nvm.Reset(lg)
	return nvm, lg, r, nil
}

func queryInto(nvm *system.NativeVM, from ethcommon.Address, methodName string, out any, args ...any) error {
	tokenAddr := ethcommon.HexToAddress(syscommon.TokenContractAddr)
	data, err := nvm.PackInputArgs(tokenAddr.Hex(), methodName, args...)
	if err != nil {
		return err
	}
	result, err := nvm.Run(&system.Message{From: from, To: tokenAddr, Data: data})
	if err != nil {
		return err
	}
	if result.Err != nil {
		return result.Err
	}
	values, err := nvm.UnpackOutputArgs(tokenAddr.Hex(), methodName, result.ReturnData)
	if err != nil {
		return err
	}
	if len(values) != 1 {
		return errors.Errorf("%s: expected one return value, got %d", methodName, len(values))
	}

	outValue := reflect.ValueOf(out).Elem()
	value := reflect.ValueOf(values[0])
	if !value.Type().AssignableTo(outValue.Type()) {
		return errors.Errorf("%s: cannot assign %s to %s", methodName, value.Type(), outValue.Type())
	}
	outValue.Set(value)
	return nil
}

func parseAddress(s string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, errors.Errorf("invalid address: %s", s)
	}
	return ethcommon.HexToAddress(s), nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errors.Errorf("invalid amount: %s", s)
	}
	return amount, nil
}
