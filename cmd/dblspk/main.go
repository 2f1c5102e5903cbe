// dblspk hides messages and files in ordinary text with invisible Unicode
// characters.
//
//	dblspk hide --cover cover.txt --message "meet at noon" > carrier.txt
//	dblspk reveal carrier.txt
//	dblspk strip carrier.txt
//
// Encryption is enabled by setting the passphrase environment variable
// (DBLSPK_PASSPHRASE unless configured otherwise) or by naming age
// recipients and identities. Defaults can be set in a TOML file passed
// with --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/TheusHen/dblspk/dblspk"
	"github.com/TheusHen/dblspk/dblspk/crypto"
	"github.com/TheusHen/dblspk/dblspk/protocol"
)

var (
	errUsage           = errors.New("usage: dblspk hide|reveal|strip [flags]")
	errNothingRevealed = errors.New("no hidden message could be read")
)

// env is the process surface a command runs against.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv}
	if err := run(ctx, os.Args[1:], e); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, e env) error {
	if len(args) == 0 {
		printUsage(e.stderr)
		return errUsage
	}
	switch args[0] {
	case "hide":
		return runHide(args[1:], e)
	case "reveal":
		return runReveal(ctx, args[1:], e)
	case "strip":
		return runStrip(args[1:], e)
	case "help", "-h", "--help":
		printUsage(e.stdout)
		return nil
	default:
		printUsage(e.stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags are accepted by every subcommand and override the config
// file when set.
type commonFlags struct {
	configPath    string
	logLevel      string
	passphraseEnv string
	kdf           string
	cipher        string
	recipients    []string
	identityFile  string
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "TOML config file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&c.passphraseEnv, "passphrase-env", "", "environment variable holding the passphrase (default DBLSPK_PASSPHRASE)")
	fs.StringVar(&c.kdf, "kdf", "", "passphrase KDF: pbkdf2 or argon2id")
	fs.StringVar(&c.cipher, "cipher", "", "passphrase cipher: key or age-scrypt")
	fs.StringSliceVarP(&c.recipients, "recipient", "r", nil, "age recipient to encrypt to (repeatable)")
	fs.StringVarP(&c.identityFile, "identity", "i", "", "age identity file to decrypt with")
	fs.BoolP("help", "h", false, "show help")
}

// resolve builds the effective config: defaults, then the config file,
// then flags that were given explicitly.
func (c *commonFlags) resolve(fs *pflag.FlagSet) (config, error) {
	cfg := defaultConfig()
	if c.configPath != "" {
		loaded, err := loadConfig(c.configPath)
		if err != nil {
			return config{}, err
		}
		cfg = loaded
	}
	if fs.Changed("log-level") {
		if err := cfg.setLogLevel(c.logLevel); err != nil {
			return config{}, err
		}
	}
	if fs.Changed("passphrase-env") {
		cfg.PassphraseEnv = c.passphraseEnv
	}
	if fs.Changed("kdf") {
		if err := cfg.setKDF(c.kdf); err != nil {
			return config{}, err
		}
	}
	if fs.Changed("cipher") {
		if err := cfg.setCipher(c.cipher); err != nil {
			return config{}, err
		}
	}
	if fs.Changed("recipient") {
		cfg.Recipients = normalizeKeys(c.recipients)
	}
	if fs.Changed("identity") {
		cfg.IdentityFile = c.identityFile
	}
	return cfg, nil
}

func (cfg config) logger(e env) *slog.Logger {
	return slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// mode picks the cipher: age keys when any are configured, otherwise the
// passphrase from the environment, otherwise none.
func (cfg config) mode(e env) (dblspk.Mode, error) {
	if len(cfg.Recipients) > 0 || cfg.IdentityFile != "" {
		var ids []string
		if cfg.IdentityFile != "" {
			var err error
			if ids, err = readIdentities(cfg.IdentityFile); err != nil {
				return dblspk.Mode{}, err
			}
		}
		c, err := crypto.NewAgeCipher(cfg.Recipients, ids)
		if err != nil {
			return dblspk.Mode{}, err
		}
		return dblspk.Encrypted(c), nil
	}

	passphrase := e.getenv(cfg.PassphraseEnv)
	if passphrase == "" {
		return dblspk.Plain(), nil
	}
	if cfg.Cipher == cipherAgeScrypt {
		c, err := crypto.NewAgePassphraseCipher(passphrase, cfg.ScryptWorkFactor)
		if err != nil {
			return dblspk.Mode{}, err
		}
		return dblspk.Encrypted(c), nil
	}
	key, err := crypto.DeriveKey(passphrase, cfg.KDF)
	if err != nil {
		return dblspk.Mode{}, err
	}
	return dblspk.Encrypted(key), nil
}

// parse parses args and reports whether the command should go on.
func parse(fs *pflag.FlagSet, args []string, e env) (bool, error) {
	fs.SetOutput(e.stderr)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return false, nil
		}
		return false, err
	}
	if help, _ := fs.GetBool("help"); help {
		fs.SetOutput(e.stdout)
		fs.PrintDefaults()
		return false, nil
	}
	return true, nil
}

func runHide(args []string, e env) error {
	var (
		common       commonFlags
		coverPath    string
		message      string
		filePath     string
		fileType     string
		dataShards   int
		parityShards int
	)
	fs := pflag.NewFlagSet("dblspk hide", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVarP(&coverPath, "cover", "c", "-", "cover text file, - for stdin")
	fs.StringVarP(&message, "message", "m", "", "text to hide")
	fs.StringVarP(&filePath, "file", "f", "", "file to hide")
	fs.StringVar(&fileType, "type", "", "MIME type of --file (default from its extension)")
	fs.IntVar(&dataShards, "data-shards", 0, "Reed-Solomon data shards (0 disables parity)")
	fs.IntVar(&parityShards, "parity-shards", 0, "Reed-Solomon parity shards")

	if ok, err := parse(fs, args, e); !ok {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if (message == "") == (filePath == "") {
		return errors.New("hide needs exactly one of --message or --file")
	}

	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	if fs.Changed("data-shards") || fs.Changed("parity-shards") {
		cfg.Parity = dblspk.ParityOptions{DataShards: dataShards, ParityShards: parityShards}
	}
	mode, err := cfg.mode(e)
	if err != nil {
		return err
	}
	codec, err := dblspk.New(dblspk.Options{Logger: cfg.logger(e), Parity: cfg.Parity})
	if err != nil {
		return err
	}

	cover, err := readText(coverPath, e.stdin)
	if err != nil {
		return err
	}

	var runs []string
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}
		if fileType == "" {
			fileType = mime.TypeByExtension(filepath.Ext(filePath))
		}
		if fileType == "" {
			fileType = "application/octet-stream"
		}
		runs, err = codec.EncodeFile(mode, protocol.File{Type: fileType, Name: filepath.Base(filePath), Data: data})
		if err != nil {
			return err
		}
	} else {
		if runs, err = codec.EncodeText(mode, message); err != nil {
			return err
		}
	}

	_, err = io.WriteString(e.stdout, codec.Hide(cover, runs))
	return err
}

func runReveal(ctx context.Context, args []string, e env) error {
	var (
		common     commonFlags
		outDir     string
		printCover bool
	)
	fs := pflag.NewFlagSet("dblspk reveal", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVarP(&outDir, "out-dir", "o", ".", "directory for revealed files")
	fs.BoolVar(&printCover, "cover", false, "print the cover text instead of messages")

	if ok, err := parse(fs, args, e); !ok {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(1))
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	mode, err := cfg.mode(e)
	if err != nil {
		return err
	}
	log := cfg.logger(e)
	codec, err := dblspk.New(dblspk.Options{Logger: log})
	if err != nil {
		return err
	}

	text, err := readText(fs.Arg(0), e.stdin)
	if err != nil {
		return err
	}
	revealed, err := codec.Reveal(ctx, mode, text)
	if err != nil {
		return err
	}
	if printCover {
		_, err := io.WriteString(e.stdout, revealed.Cover)
		return err
	}

	found := 0
	for _, c := range revealed.Contents {
		switch {
		case c.Err != nil:
			if !errors.Is(c.Err, protocol.ErrNoMessage) {
				log.Warn("skipped hidden message", "error", c.Err, "details", c.Details)
			}
		case c.File != nil:
			path, err := saveFile(outDir, c.File)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stderr, "saved %s (%s, %d bytes)\n", path, c.File.Type, len(c.File.Data))
			found++
		default:
			fmt.Fprintln(e.stdout, c.Text)
			found++
		}
	}
	if found == 0 {
		return errNothingRevealed
	}
	return nil
}

// saveFile writes f into dir under its base name only.
func saveFile(dir string, f *protocol.File) (string, error) {
	name := filepath.Base(filepath.Clean("/" + f.Name))
	if name == "/" || name == "." {
		name = "hidden.bin"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, f.Data, 0o600); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

func runStrip(args []string, e env) error {
	var common commonFlags
	fs := pflag.NewFlagSet("dblspk strip", pflag.ContinueOnError)
	common.add(fs)
	if ok, err := parse(fs, args, e); !ok {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(1))
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	codec, err := dblspk.New(dblspk.Options{Logger: cfg.logger(e)})
	if err != nil {
		return err
	}
	text, err := readText(fs.Arg(0), e.stdin)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.stdout, codec.Strip(text))
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `dblspk hides text and files in plain text with invisible characters.

Usage:
  dblspk hide   --message TEXT | --file PATH [--cover FILE] [flags]
  dblspk reveal [FILE] [flags]
  dblspk strip  [FILE] [flags]

Encryption:
  Set DBLSPK_PASSPHRASE (or the variable named by --passphrase-env) to
  encrypt with a passphrase, or pass --recipient / --identity for age keys.

Run "dblspk COMMAND --help" for the flags of a command.
`)
}
