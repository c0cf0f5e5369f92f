package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tossh23/architect-study-app/internal/identity"
	"github.com/tossh23/architect-study-app/internal/remote"
	"github.com/tossh23/architect-study-app/internal/seed"
	"github.com/tossh23/architect-study-app/internal/store"
	enginesync "github.com/tossh23/architect-study-app/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "archstudy",
	Short: "Architect licensing exam study app",
	Long: `archstudy is a local-first study app for the architect licensing exam.

All data lives in a local SQLite database and stays usable offline. When a
remote store is configured, the question bank, answer history, and memos are
reconciled with it in the background:

  questions  mirrored from the shared remote bank (admin-curated)
  history    merged as a grow-only set across devices
  memos      merged with remote precedence on conflicts

Configuration is read from $HOME/.archstudy/config.yaml (override with
--config) and ARCHSTUDY_* environment variables.`,
	SilenceUsage: true,
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.archstudy/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (default $HOME/.archstudy)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log sync activity to stderr")

	_ = viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddGroup(
		&cobra.Group{ID: "study", Title: "Study Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".archstudy"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("ARCHSTUDY")
	viper.AutomaticEnv()

	viper.SetDefault("dashboard.port", 8799)
	viper.SetDefault("daemon.resync_interval", 15*time.Minute)

	// A missing config file is fine; everything has defaults.
	_ = viper.ReadInConfig()
}

func dataDir() string {
	if dir := viper.GetString("data.dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".archstudy"
	}
	return filepath.Join(home, ".archstudy")
}

// openStore opens the local database and ensures the schema exists.
func openStore() (*store.Store, error) {
	st, err := store.Open(filepath.Join(dataDir(), "study.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := st.InitSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}
	return st, nil
}

// newProvider builds the identity from config: user.id names this
// device's user, admin.ids the uids allowed to edit the question bank.
func newProvider() *identity.StaticProvider {
	policy := identity.NewAdminList(viper.GetStringSlice("admin.ids")...)
	provider := identity.NewStaticProvider(policy)
	if uid := viper.GetString("user.id"); uid != "" {
		provider.SignIn(uid)
	}
	return provider
}

// newRemote builds the remote store client, or an empty in-memory
// stand-in when no remote is configured so every code path still works
// fully offline.
func newRemote() remote.Store {
	if url := viper.GetString("remote.url"); url != "" {
		return remote.NewClient(url, viper.GetString("remote.token"))
	}
	return remote.NewMemory()
}

func syncLogger() *log.Logger {
	if viper.GetBool("verbose") {
		return log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return nil
}

// newEngine wires store, remote, identity, and the builtin bank into a
// sync engine.
func newEngine(st *store.Store, provider identity.Provider) *enginesync.Engine {
	return enginesync.New(st, newRemote(), provider, &enginesync.Config{
		Seed:   seed.Builtin,
		Logger: syncLogger(),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
