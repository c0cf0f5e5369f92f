package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tossh23/architect-study-app/internal/daemon"
	"github.com/tossh23/architect-study-app/internal/session"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "advanced",
	Short:   "Run the background sync daemon",
	Long: `Run a long-lived process that keeps local data fresh:

  1. Re-runs reconciliation on a timer (daemon.resync_interval)
  2. Watches <data-dir>/inbox/ and imports any snapshot file dropped
     there, then pushes the imported history to the remote

Logs go to <data-dir>/daemon.log with size-based rotation when --log-file
is not overridden. Stop with Ctrl+C or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		logFile, _ := cmd.Flags().GetString("log-file")
		if logFile == "" {
			logFile = filepath.Join(dataDir(), "daemon.log")
		}
		logger := daemon.RotatingLogger(logFile, "[daemon] ")

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		provider := newProvider()
		engine := newEngine(st, provider)
		sess := session.New(engine, provider, logger)
		if err := sess.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer sess.Stop()

		config := daemon.DefaultConfig()
		config.ResyncInterval = viper.GetDuration("daemon.resync_interval")
		config.Logger = logger

		d, err := daemon.New(sess, st, filepath.Join(dataDir(), "inbox"), config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("%s Daemon running (resync every %v, inbox %s)\n",
			ui.RenderAccent("🚀"), config.ResyncInterval, filepath.Join(dataDir(), "inbox"))
		fmt.Printf("Logging to %s\n", logFile)

		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s Daemon error: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
	},
}

func init() {
	daemonCmd.Flags().String("log-file", "", "daemon log file (default <data-dir>/daemon.log)")
	rootCmd.AddCommand(daemonCmd)
}
