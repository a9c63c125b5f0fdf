package repo

const (
	AppName = "DyfusionLedger"

	// CfgFileName is the default config name
	CfgFileName = "config.toml"

	genesisCfgFileName = "genesis.toml"

	// defaultRepoRoot is the path to the default config dir location.
	defaultRepoRoot = "~/.dyfusion-ledger"

	// rootPathEnvVar is the environment variable used to change the path root.
	rootPathEnvVar = "DYFUSION_LEDGER_PATH"

	LogsDirName = "logs"

	LedgerDirName = "ledger"
)

const (
	KVStorageTypeLeveldb = "leveldb"
	KVStorageTypeMemory  = "memory"
	KVStorageCacheSize   = 16
)

const (
	DefaultTokenName     = "Dyfusion"
	DefaultTokenSymbol   = "DFX"
	DefaultTokenDecimals = 18

	// DefaultInitialSupply is in whole tokens, scaled by decimals at genesis.
	DefaultInitialSupply = "100000000"

	// DefaultTaxRateBps is 2% in basis points.
	DefaultTaxRateBps = 200

	DefaultOwnerAddr         = "0x9fA0d3d6D1a3E152f1fdF2677cBD0f714Ae90519"
	DefaultTreasuryAddr      = "0x0E55cF6530e2971E72B5D1273f2BCf12BE6b1FD7"
	DefaultRewardManagerAddr = "0xA46DBCa426e2AC83Ba528c9960a4cbd09872e725"
)
