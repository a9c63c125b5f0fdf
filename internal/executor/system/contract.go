package system

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/access"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/token"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
	"github.com/dyfusion/dyfusion-ledger/pkg/loggers"
	"github.com/dyfusion/dyfusion-ledger/pkg/repo"
)

var (
	ErrNotExistSystemContract         = errors.New("not exist this system contract")
	ErrNotExistMethodName             = errors.New("not exist method name of this system contract")
	ErrNotExistSystemContractABI      = errors.New("not exist this system contract abi")
	ErrNotDeploySystemContract        = errors.New("not deploy this system contract")
	ErrNotImplementFuncSystemContract = errors.New("not implement the function for this system contract")
)

// Message is one external call into a system contract.
type Message struct {
	From ethcommon.Address
	To   ethcommon.Address
	Data []byte
}

// ExecutionResult is the outcome of one call. Err carries the contract-level
// revert reason, a non-nil outer error means the call never dispatched.
type ExecutionResult struct {
	UsedGas    uint64
	Err        error
	ReturnData []byte
}

// NativeVM dispatches ABI-encoded calls onto Go contract instances and gives
// every call all-or-nothing semantics: state changes and logs of a failed
// call are rolled back as one unit.
type NativeVM struct {
	logger      logrus.FieldLogger
	stateLedger ledger.StateLedger
	currentLogs []common.Log

	// contract address mapping to contract abi
	contract2ABI map[string]*abi.ABI
	// contract address mapping to contract instance
	contract2Instance map[string]common.SystemContract
}

func New(tokenConfig token.Config) *NativeVM {
	nvm := &NativeVM{
		logger:            loggers.Logger(loggers.SystemContract),
		contract2ABI:      make(map[string]*abi.ABI),
		contract2Instance: make(map[string]common.SystemContract),
	}

	cfg := &common.SystemContractConfig{
		Logger: nvm.logger,
	}

	nvm.Deploy(common.TokenContractAddr, token.NewDFXManager(cfg, tokenConfig), token.ABI())

	return nvm
}

func (nvm *NativeVM) Deploy(addr string, instance common.SystemContract, contractABI *abi.ABI) {
	if _, ok := nvm.contract2Instance[addr]; ok {
		panic("deploy system contract repeated")
	}
	nvm.contract2Instance[addr] = instance
	nvm.contract2ABI[addr] = contractABI
}

func (nvm *NativeVM) Reset(stateLedger ledger.StateLedger) {
	nvm.stateLedger = stateLedger
	nvm.currentLogs = make([]common.Log, 0)
}

func (nvm *NativeVM) Run(msg *Message) (executionResult *ExecutionResult, execErr error) {
	snapshot := -1
	defer func() {
		if err := recover(); err != nil {
			nvm.logger.Error(err)
			if snapshot >= 0 {
				nvm.stateLedger.RevertToSnapshot(snapshot)
				nvm.currentLogs = nvm.currentLogs[:0]
			}
			execErr = fmt.Errorf("%s", err)
		}
	}()

	contractAddr := msg.To.Hex()
	contractInstance, ok := nvm.contract2Instance[contractAddr]
	if !ok {
		return nil, ErrNotDeploySystemContract
	}
	methodName, err := nvm.getMethodName(contractAddr, msg.Data)
	if err != nil {
		return nil, err
	}

	nvm.currentLogs = make([]common.Log, 0)
	contractInstance.SetContext(&common.VMContext{
		StateLedger: nvm.stateLedger,
		CurrentLogs: &nvm.currentLogs,
		CurrentUser: &msg.From,
	})

	// method name may be transfer, but we implement Transfer
	// capitalize the first letter of a function
	funcName := methodName
	if len(methodName) >= 2 {
		funcName = fmt.Sprintf("%s%s", strings.ToUpper(methodName[:1]), methodName[1:])
	}
	nvm.logger.Debugf("run system contract method name: %s", funcName)
	method := reflect.ValueOf(contractInstance).MethodByName(funcName)
	if !method.IsValid() {
		return nil, ErrNotImplementFuncSystemContract
	}
	args, err := nvm.parseArgs(contractAddr, msg.Data, methodName)
	if err != nil {
		return nil, err
	}
	var inputs []reflect.Value
	for _, arg := range args {
		inputs = append(inputs, reflect.ValueOf(arg))
	}

	snapshot = nvm.stateLedger.Snapshot()
	// maybe panic when inputs mismatch, but we recover
	results := method.Call(inputs)

	var returnRes []any
	var returnErr error
	for _, result := range results {
		// value kinds (bool, number, string, address array) can't call IsNil
		switch result.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		default:
			returnRes = append(returnRes, result.Interface())
			continue
		}

		if result.IsNil() {
			continue
		}
		if err, ok := result.Interface().(error); ok {
			returnErr = err
			break
		}
		returnRes = append(returnRes, result.Interface())
	}

	executionResult = &ExecutionResult{
		UsedGas: common.CalculateDynamicGas(msg.Data),
	}

	nvm.logger.Debugf("contract addr: %s, method name: %s, return result: %+v, return error: %v", contractAddr, methodName, returnRes, returnErr)

	if returnErr != nil {
		// the whole call rolls back, logs included
		nvm.stateLedger.RevertToSnapshot(snapshot)
		nvm.currentLogs = nvm.currentLogs[:0]
		executionResult.Err = returnErr
		return executionResult, nil
	}

	nvm.saveLogs()

	if returnRes != nil {
		returnData, err := nvm.PackOutputArgs(contractAddr, methodName, returnRes...)
		if err != nil {
			nvm.logger.Errorf("pack return data error: %s", err)
			return executionResult, err
		}
		executionResult.ReturnData = returnData
	}

	return executionResult, nil
}

// getMethodName matches the four byte selector of the call data against the
// contract ABI.
func (nvm *NativeVM) getMethodName(contractAddr string, data []byte) (string, error) {
	contractABI, ok := nvm.contract2ABI[contractAddr]
	if !ok {
		return "", ErrNotExistSystemContractABI
	}
	if len(data) < 4 {
		return "", fmt.Errorf("msg data length is not improperly formatted: %q - Bytes: %+v", data, data)
	}

	for methodName, method := range contractABI.Methods {
		if bytes.Equal(method.ID, data[:4]) {
			return methodName, nil
		}
	}

	return "", ErrNotExistMethodName
}

// parseArgs parse the arguments to specified interface by method name
func (nvm *NativeVM) parseArgs(contractAddr string, data []byte, methodName string) ([]any, error) {
	// discard method id
	msgData := data[4:]

	contractABI, ok := nvm.contract2ABI[contractAddr]
	if !ok {
		return nil, ErrNotExistSystemContractABI
	}

	var args abi.Arguments
	if method, ok := contractABI.Methods[methodName]; ok {
		if len(msgData)%32 != 0 {
			return nil, fmt.Errorf("system contract abi: improperly formatted output: %q - Bytes: %+v", msgData, msgData)
		}
		args = method.Inputs
	}

	if args == nil {
		return nil, fmt.Errorf("system contract abi: could not locate named method: %s", methodName)
	}

	return args.Unpack(msgData)
}

// PackInputArgs pack the input arguments by method name
func (nvm *NativeVM) PackInputArgs(contractAddr, methodName string, inputArgs ...any) ([]byte, error) {
	contractABI, ok := nvm.contract2ABI[contractAddr]
	if !ok {
		return nil, ErrNotExistSystemContractABI
	}
	return contractABI.Pack(methodName, inputArgs...)
}

// PackOutputArgs pack the output arguments by method name
func (nvm *NativeVM) PackOutputArgs(contractAddr, methodName string, outputArgs ...any) ([]byte, error) {
	contractABI, ok := nvm.contract2ABI[contractAddr]
	if !ok {
		return nil, ErrNotExistSystemContractABI
	}

	var args abi.Arguments
	if method, ok := contractABI.Methods[methodName]; ok {
		args = method.Outputs
	}

	if args == nil {
		return nil, fmt.Errorf("system contract abi: could not locate named method: %s", methodName)
	}

	return args.Pack(outputArgs...)
}

// UnpackOutputArgs unpack the output arguments by method name
func (nvm *NativeVM) UnpackOutputArgs(contractAddr, methodName string, packed []byte) ([]any, error) {
	contractABI, ok := nvm.contract2ABI[contractAddr]
	if !ok {
		return nil, ErrNotExistSystemContractABI
	}

	var args abi.Arguments
	if method, ok := contractABI.Methods[methodName]; ok {
		args = method.Outputs
	}

	if args == nil {
		return nil, fmt.Errorf("system contract abi: could not locate named method: %s", methodName)
	}

	return args.Unpack(packed)
}

// saveLogs save all logs during the system execution
func (nvm *NativeVM) saveLogs() {
	for _, currentLog := range nvm.currentLogs {
		nvm.stateLedger.AddLog(&ledger.EvmLog{
			Address: currentLog.Address,
			Topics:  currentLog.Topics,
			Data:    currentLog.Data,
			Removed: currentLog.Removed,
		})
	}
}

// IsSystemContract judge if it is system contract
func (nvm *NativeVM) IsSystemContract(addr *ethcommon.Address) bool {
	if addr == nil {
		return false
	}

	_, ok := nvm.contract2Instance[addr.Hex()]
	return ok
}

// InitGenesisData boots the token contract: the genesis admin initializes it
// and grants RewardManagerRole to each configured manager.
func InitGenesisData(genesis *repo.GenesisConfig, lg ledger.StateLedger) error {
	tokenConfig, err := token.GenerateGenesisTokenConfig(genesis)
	if err != nil {
		return err
	}

	nvm := New(tokenConfig)
	nvm.Reset(lg)

	adminAddr := ethcommon.HexToAddress(genesis.Admin)
	tokenAddr := ethcommon.HexToAddress(common.TokenContractAddr)

	initMethod := "initialize"
	initArgs := []any{tokenConfig.Treasury, new(big.Int).SetUint64(tokenConfig.InitialTaxRate)}
	if !common.IsZeroAddress(tokenConfig.Reservoir) {
		initMethod = "initializeWithReservoir"
		initArgs = []any{tokenConfig.Treasury, tokenConfig.Reservoir, new(big.Int).SetUint64(tokenConfig.InitialTaxRate)}
	}
	if err := nvm.call(adminAddr, tokenAddr, initMethod, initArgs...); err != nil {
		return errors.Wrap(err, "initialize token contract")
	}

	for _, manager := range tokenConfig.RewardManagers {
		if err := nvm.call(adminAddr, tokenAddr, "grantRole", uint8(access.RoleRewardManager), manager); err != nil {
			return errors.Wrapf(err, "grant reward manager %s", manager)
		}
	}

	lg.Finalise()
	// genesis bootstrap events belong to no block
	lg.ClearLogs()
	return nil
}

func (nvm *NativeVM) call(from, to ethcommon.Address, methodName string, args ...any) error {
	data, err := nvm.PackInputArgs(to.Hex(), methodName, args...)
	if err != nil {
		return err
	}
	result, err := nvm.Run(&Message{From: from, To: to, Data: data})
	if err != nil {
		return err
	}
	return result.Err
}
