package repo

import (
	"bytes"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Repo struct {
	RepoRoot      string
	Config        *Config
	GenesisConfig *GenesisConfig
}

// Default builds a repo with default config and genesis, without touching disk.
func Default(repoRoot string) (*Repo, error) {
	return &Repo{
		RepoRoot:      repoRoot,
		Config:        DefaultConfig(),
		GenesisConfig: DefaultGenesisConfig(),
	}, nil
}

// Load reads config.toml and genesis.toml from the repo root, generating
// defaults for files that do not exist yet.
func Load(repoRoot string) (*Repo, error) {
	repoRoot, err := LoadRepoRootFromEnv(repoRoot)
	if err != nil {
		return nil, err
	}
	rep, err := Default(repoRoot)
	if err != nil {
		return nil, err
	}

	cfgPath := path.Join(repoRoot, CfgFileName)
	if fileExist(cfgPath) {
		if err := readConfigFromFile(cfgPath, rep.Config); err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}
	genesisPath := path.Join(repoRoot, genesisCfgFileName)
	if fileExist(genesisPath) {
		if err := readConfigFromFile(genesisPath, rep.GenesisConfig); err != nil {
			return nil, errors.Wrap(err, "failed to read genesis config")
		}
	}
	if err := rep.GenesisConfig.Validate(); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) Flush() error {
	if err := os.MkdirAll(r.RepoRoot, 0755); err != nil {
		return err
	}
	if err := writeConfig(path.Join(r.RepoRoot, CfgFileName), r.Config); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	if err := writeConfig(path.Join(r.RepoRoot, genesisCfgFileName), r.GenesisConfig); err != nil {
		return errors.Wrap(err, "failed to write genesis config")
	}
	return nil
}

func writeConfig(cfgPath string, config any) error {
	raw, err := MarshalConfig(config)
	if err != nil {
		return err
	}

	return os.WriteFile(cfgPath, []byte(raw), 0755)
}

func MarshalConfig(config any) (string, error) {
	buf := bytes.NewBuffer([]byte{})
	e := toml.NewEncoder(buf)
	e.SetIndentTables(true)
	e.SetArraysMultiline(true)
	if err := e.Encode(config); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func LoadRepoRootFromEnv(repoRoot string) (string, error) {
	if repoRoot != "" {
		return repoRoot, nil
	}
	repoRoot = os.Getenv(rootPathEnvVar)
	var err error
	if len(repoRoot) == 0 {
		repoRoot, err = homedir.Expand(defaultRepoRoot)
	}
	return repoRoot, err
}

func readConfigFromFile(cfgFilePath string, config any) error {
	vp := viper.New()
	vp.SetConfigFile(cfgFilePath)
	vp.SetConfigType("toml")

	// only check types, viper does not have a strong type checking
	raw, err := os.ReadFile(cfgFilePath)
	if err != nil {
		return err
	}
	decoder := toml.NewDecoder(bytes.NewBuffer(raw))
	checker := reflect.New(reflect.TypeOf(config).Elem())
	if err := decoder.Decode(checker.Interface()); err != nil {
		var decodeError *toml.DecodeError
		if errors.As(err, &decodeError) {
			return errors.Errorf("check config format failed from %s:\n%s", cfgFilePath, decodeError.String())
		}

		return errors.Wrapf(err, "check config format failed from %s", cfgFilePath)
	}

	return readConfig(vp, config)
}

func readConfig(vp *viper.Viper, config any) error {
	vp.AutomaticEnv()
	if _, ok := config.(*GenesisConfig); ok {
		vp.SetEnvPrefix("DYFUSION_LEDGER_GENESIS")
	} else {
		vp.SetEnvPrefix("DYFUSION_LEDGER")
	}
	replacer := strings.NewReplacer(".", "_")
	vp.SetEnvKeyReplacer(replacer)

	if err := vp.ReadInConfig(); err != nil {
		return err
	}

	return vp.Unmarshal(config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		func(f reflect.Kind, t reflect.Kind, data any) (any, error) {
			if f != reflect.String || t != reflect.Slice {
				return data, nil
			}

			raw := data.(string)
			if raw == "" {
				return []string{}, nil
			}
			raw = strings.TrimPrefix(raw, ";")
			raw = strings.TrimSuffix(raw, ";")

			return strings.Split(raw, ";"), nil
		},
	)))
}

func fileExist(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
