package repo

type Config struct {
	Storage Storage `mapstructure:"storage" toml:"storage"`
	Log     Log     `mapstructure:"log" toml:"log"`
}

type Storage struct {
	KvType      string `mapstructure:"kv_type" toml:"kv_type"`
	KvCacheSize int    `mapstructure:"kv_cache_size" toml:"kv_cache_size"`
	Sync        bool   `mapstructure:"sync" toml:"sync"`
}

type Log struct {
	Level  string    `mapstructure:"level" toml:"level"`
	Module LogModule `mapstructure:"module" toml:"module"`
}

type LogModule struct {
	App            string `mapstructure:"app" toml:"app"`
	Storage        string `mapstructure:"storage" toml:"storage"`
	Executor       string `mapstructure:"executor" toml:"executor"`
	SystemContract string `mapstructure:"system_contract" toml:"system_contract"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: Storage{
			KvType:      KVStorageTypeLeveldb,
			KvCacheSize: KVStorageCacheSize,
			Sync:        true,
		},
		Log: Log{
			Level: "info",
			Module: LogModule{
				App:            "info",
				Storage:        "info",
				Executor:       "info",
				SystemContract: "info",
			},
		},
	}
}
