package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/TheusHen/dblspk/dblspk"
	"github.com/TheusHen/dblspk/dblspk/crypto"
)

const (
	cipherKey       = "key"
	cipherAgeScrypt = "age-scrypt"
)

// config is everything a subcommand needs beyond its own arguments.
type config struct {
	KDF              crypto.KDFParams
	Parity           dblspk.ParityOptions
	LogLevel         slog.Level
	PassphraseEnv    string
	Cipher           string
	ScryptWorkFactor int
	Recipients       []string
	IdentityFile     string
}

func defaultConfig() config {
	return config{
		KDF:           crypto.DefaultKDFParams(),
		LogLevel:      slog.LevelWarn,
		PassphraseEnv: "DBLSPK_PASSPHRASE",
		Cipher:        cipherKey,
	}
}

type fileConfig struct {
	KDF              string   `toml:"kdf"`
	Iterations       uint32   `toml:"iterations"`
	MemoryKiB        uint32   `toml:"memory_kib"`
	Threads          uint8    `toml:"threads"`
	DataShards       int      `toml:"data_shards"`
	ParityShards     int      `toml:"parity_shards"`
	LogLevel         string   `toml:"log_level"`
	PassphraseEnv    string   `toml:"passphrase_env"`
	Cipher           string   `toml:"cipher"`
	ScryptWorkFactor int      `toml:"scrypt_work_factor"`
	Recipients       []string `toml:"recipients"`
	IdentityFile     string   `toml:"identity_file"`
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load dblspk config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load dblspk config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("kdf") {
		if err := cfg.setKDF(raw.KDF); err != nil {
			return config{}, err
		}
	}
	if meta.IsDefined("iterations") {
		cfg.KDF.Iterations = raw.Iterations
	}
	if meta.IsDefined("memory_kib") {
		cfg.KDF.Memory = raw.MemoryKiB
	}
	if meta.IsDefined("threads") {
		cfg.KDF.Threads = raw.Threads
	}

	if meta.IsDefined("data_shards") {
		cfg.Parity.DataShards = raw.DataShards
	}
	if meta.IsDefined("parity_shards") {
		cfg.Parity.ParityShards = raw.ParityShards
	}

	if meta.IsDefined("log_level") {
		if err := cfg.setLogLevel(raw.LogLevel); err != nil {
			return config{}, err
		}
	}

	if meta.IsDefined("passphrase_env") {
		if env := strings.TrimSpace(raw.PassphraseEnv); env != "" {
			cfg.PassphraseEnv = env
		}
	}
	if meta.IsDefined("cipher") {
		if err := cfg.setCipher(raw.Cipher); err != nil {
			return config{}, err
		}
	}
	if meta.IsDefined("scrypt_work_factor") {
		cfg.ScryptWorkFactor = raw.ScryptWorkFactor
	}
	if meta.IsDefined("recipients") {
		cfg.Recipients = normalizeKeys(raw.Recipients)
	}
	if meta.IsDefined("identity_file") {
		cfg.IdentityFile = strings.TrimSpace(raw.IdentityFile)
	}

	return cfg, nil
}

// setKDF switches algorithm and resets its cost parameters to that
// algorithm's defaults.
func (c *config) setKDF(name string) error {
	kdf, err := crypto.ParseKDF(strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if kdf == crypto.KDFArgon2id {
		c.KDF = crypto.DefaultArgon2Params()
	} else {
		c.KDF = crypto.DefaultKDFParams()
	}
	return nil
}

func (c *config) setLogLevel(name string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return fmt.Errorf("parse log_level: %w", err)
	}
	c.LogLevel = level
	return nil
}

func (c *config) setCipher(name string) error {
	switch v := strings.TrimSpace(name); v {
	case cipherKey, cipherAgeScrypt:
		c.Cipher = v
		return nil
	default:
		return fmt.Errorf("unknown cipher %q (want %s or %s)", name, cipherKey, cipherAgeScrypt)
	}
}

func normalizeKeys(in []string) []string {
	out := make([]string, 0, len(in))
	for _, key := range in {
		v := strings.TrimSpace(key)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
