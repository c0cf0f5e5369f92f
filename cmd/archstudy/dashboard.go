package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tossh23/architect-study-app/internal/dashboard"
	"github.com/tossh23/architect-study-app/internal/session"
	enginesync "github.com/tossh23/architect-study-app/internal/sync"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Start the real-time study dashboard server",
	Long: `Start a WebSocket server broadcasting live study activity.

WebSocket messages include:
  sync_complete         a reconciliation pass finished
  question_bank_update  the local bank was replaced with a new version
  answer_recorded       an answer was graded
  stats                 updated accuracy aggregates

While running, the server also performs periodic reconciliation and
publishes fresh stats after each pass.

Example usage:
  archstudy dashboard              # default port 8799
  archstudy dashboard --port 9000

Connect with a WebSocket client:
  ws://localhost:8799/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = viper.GetInt("dashboard.port")
		}

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		logger := log.New(os.Stderr, "[dashboard] ", log.LstdFlags)
		server := dashboard.NewServer(&dashboard.Config{Port: port, Logger: logger})
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "%s Failed to start dashboard: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
		handler := dashboard.NewHandler(server, logger)

		provider := newProvider()
		engine := newEngine(st, provider)
		sess := session.New(engine, provider, logger)

		// Track what the store held before each pass so a Synced
		// transition can broadcast only what that pass changed: a bank
		// replacement and answers that arrived from other devices.
		ctx0 := context.Background()
		lastFingerprint, _ := st.GetMeta(ctx0, enginesync.MetaQuestionsFingerprint)
		seenAnswers := make(map[string]struct{})
		if history, err := st.GetAllHistoryContext(ctx0); err == nil {
			for _, entry := range history {
				seenAnswers[entry.ID] = struct{}{}
			}
		}

		publish := func() {
			ctx := context.Background()
			questions, err := st.GetAllQuestionsContext(ctx)
			if err != nil {
				logger.Printf("Failed to load questions for stats: %v", err)
				return
			}
			history, err := st.GetAllHistoryContext(ctx)
			if err != nil {
				logger.Printf("Failed to load history for stats: %v", err)
				return
			}

			if fp, err := st.GetMeta(ctx, enginesync.MetaQuestionsFingerprint); err == nil && fp != lastFingerprint {
				lastFingerprint = fp
				source, _ := st.GetMeta(ctx, enginesync.MetaQuestionsSource)
				handler.OnBankRefreshed(len(questions), source)
			}
			for _, entry := range history {
				if _, seen := seenAnswers[entry.ID]; !seen {
					seenAnswers[entry.ID] = struct{}{}
					handler.OnAnswerRecorded(entry)
				}
			}

			handler.PublishStats(questions, history)
		}

		var syncStart time.Time
		sess.OnStateChange(func(state session.State) {
			switch state {
			case session.Syncing:
				syncStart = time.Now()
			case session.Synced:
				handler.OnSyncComplete(nil, time.Since(syncStart))
				publish()
			case session.SyncFailed:
				handler.OnSyncComplete(sess.LastSyncError(), time.Since(syncStart))
			}
		})
		if err := sess.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer sess.Stop()

		fmt.Printf("%s Dashboard on http://localhost:%d (ws://localhost:%d/ws)\n",
			ui.RenderAccent("📡"), port, port)
		fmt.Println("Press Ctrl+C to stop...")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ticker := time.NewTicker(viper.GetDuration("daemon.resync_interval"))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := server.Stop(); err != nil {
					logger.Printf("Shutdown error: %v", err)
				}
				return
			case <-ticker.C:
				sess.Resync()
			}
		}
	},
}

func init() {
	dashboardCmd.Flags().Int("port", 0, "port to listen on (default from config, 8799)")
	rootCmd.AddCommand(dashboardCmd)
}
