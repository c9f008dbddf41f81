// Command hpkehelper exposes the hpke package over JSON on stdin and
// stdout so other HPKE implementations can be tested against it.
//
// The suite is chosen with --kem, --kdf and --aead or the HPKE_KEM,
// HPKE_KDF and HPKE_AEAD environment variables, which may also come from a
// .env file. Binary fields are base64url.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	hpke "github.com/vaultsandbox/hpke-go"
)

// Config holds the standard streams used by the helper.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

const defaultEnvFile = ".env"

// helper carries per-invocation state shared by the subcommands.
type helper struct {
	cfg      Config
	v        *viper.Viper
	logLevel int
	logFile  string
	envFile  string
}

func run(args []string, cfg Config) error {
	if len(args) < 2 {
		return errors.New("usage: hpkehelper <command> [flags]")
	}

	h := &helper{cfg: cfg, v: viper.New()}
	root := h.rootCmd()
	root.SetArgs(args[1:])
	root.SetIn(cfg.Stdin)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)
	return root.Execute()
}

func (h *helper) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hpkehelper",
		Short:         "JSON-over-stdio driver for HPKE interoperability tests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := h.initLog(jww.Threshold(h.logLevel), h.logFile); err != nil {
				return err
			}
			return h.loadEnv()
		},
	}

	flags := root.PersistentFlags()
	flags.String("kem", "X25519", "KEM name or codepoint (env HPKE_KEM)")
	flags.String("kdf", "HKDF-SHA256", "KDF name or codepoint (env HPKE_KDF)")
	flags.String("aead", "AES-128-GCM", "AEAD name or codepoint (env HPKE_AEAD)")
	flags.StringVar(&h.envFile, "env", defaultEnvFile, "Optional .env file with HPKE_* settings.")
	flags.StringVarP(&h.logFile, "log", "l", "",
		"Log output path. \"-\" logs to stderr. By default logging is disabled.")
	flags.IntVarP(&h.logLevel, "logLevel", "v", 4,
		"Verbosity level of logging. 0 = TRACE, 1 = DEBUG, 2 = INFO, "+
			"3 = WARN, 4 = ERROR, 5 = CRITICAL, 6 = FATAL")

	h.v.SetEnvPrefix("HPKE")
	h.v.AutomaticEnv()
	for _, name := range []string{"kem", "kdf", "aead"} {
		// Lookup cannot fail for flags defined above.
		_ = h.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		h.suitesCmd(),
		h.keygenCmd(),
		h.sealCmd(),
		h.openCmd(),
		h.exportCmd(),
	)
	return root
}

// initLog enables JWW logging to logPath with the given threshold. An empty
// path disables logging; "-" sends it to stderr. Stdout is reserved for
// JSON responses.
func (h *helper) initLog(threshold jww.Threshold, logPath string) error {
	if threshold < jww.LevelTrace || threshold > jww.LevelFatal {
		return errors.New("invalid log threshold: " + strconv.Itoa(int(threshold)))
	}

	switch logPath {
	case "":
		jww.SetStdoutOutput(io.Discard)
		jww.SetLogOutput(io.Discard)
		return nil
	case "-":
		jww.SetStdoutOutput(h.cfg.Stderr)
		jww.SetLogOutput(io.Discard)
	default:
		jww.SetStdoutOutput(io.Discard)
		logOutput, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		jww.SetLogOutput(logOutput)
	}

	if threshold == jww.LevelTrace || threshold == jww.LevelDebug {
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}

	jww.SetStdoutThreshold(threshold)
	jww.SetLogThreshold(threshold)
	jww.INFO.Printf("Log level set to: %s", threshold)
	return nil
}

// loadEnv loads HPKE_* settings from the env file without overriding
// variables already set. A missing default file is not an error.
func (h *helper) loadEnv() error {
	if h.envFile == "" {
		return nil
	}
	err := godotenv.Load(h.envFile)
	if err == nil {
		jww.DEBUG.Printf("Loaded environment from %s", h.envFile)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && h.envFile == defaultEnvFile {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

// suite resolves the configured identifiers into a validated suite.
func (h *helper) suite() (*hpke.Suite, error) {
	kemID, err := hpke.ParseKEMID(h.v.GetString("kem"))
	if err != nil {
		return nil, err
	}
	kdfID, err := hpke.ParseKDFID(h.v.GetString("kdf"))
	if err != nil {
		return nil, err
	}
	aeadID, err := hpke.ParseAEADID(h.v.GetString("aead"))
	if err != nil {
		return nil, err
	}

	suite, err := hpke.TryFromIDs(kemID, kdfID, aeadID)
	if err != nil {
		return nil, err
	}
	jww.DEBUG.Printf("Using suite %s", suite)
	return suite, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
