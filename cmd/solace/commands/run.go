package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/solacelabs/solace/internal/bot"
	"github.com/solacelabs/solace/internal/completion"
	"github.com/solacelabs/solace/internal/config"
	"github.com/solacelabs/solace/internal/control"
	"github.com/solacelabs/solace/internal/eventlog"
	"github.com/solacelabs/solace/internal/session"
	"github.com/solacelabs/solace/internal/telegram"
	"github.com/solacelabs/solace/internal/transport"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the relay bot",
		Long: `Start polling Telegram and relaying messages.

Requires TELEGRAM_BOT_TOKEN and OPENAI_API_KEY in the environment or in a
.env file in the working directory.`,
		RunE: runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	events, err := eventlog.Open(cfg.EventLogPath)
	if err != nil {
		return err
	}
	defer events.Close()

	recordEvent(events, eventlog.EventProcessStarted, map[string]any{
		"pid":     os.Getpid(),
		"version": versionInfo.Version,
	})

	// The HTTP timeout must outlast the long-poll window.
	tg := telegram.NewClient(cfg.TelegramAPIBase, time.Duration(cfg.PollTimeout+20)*time.Second)
	completer := completion.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.CompletionTimeout)
	store := session.NewStore()
	b := bot.New(store, completer, tg, events)
	dispatcher := bot.NewDispatcher(b.HandleUpdate)

	// The signal context stops polling and the evict loop only; queued
	// pipeline runs get their own context from the dispatcher so draining
	// still answers every accepted message.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go evictLoop(ctx, cfg, store, events)

	var offset int64
	if cfg.DropPending {
		offset, err = bootstrapOffset(tg)
		if err != nil {
			log.Printf("bootstrap offset error: %v", err)
		}
	}

	log.Printf("solace running model=%s eventlog=%s", completion.Model, cfg.EventLogPath)

	breaker := control.NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown)
	sleep := time.Duration(cfg.SleepSeconds) * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Printf("shutting down, draining in-flight conversations")
			dispatcher.Wait()
			return nil
		default:
		}

		if !breaker.Allow(time.Now()) {
			time.Sleep(sleep)
			continue
		}

		updates, err := tg.GetUpdates(offset, cfg.PollTimeout)
		if err != nil {
			log.Printf("getUpdates error: %v", err)
			wasOpen := breaker.Open()
			breaker.Failure(time.Now())
			if !wasOpen && breaker.Open() {
				recordEvent(events, eventlog.EventCircuitOpened, map[string]any{
					"threshold":        cfg.BreakerThreshold,
					"cooldown_seconds": int(cfg.BreakerCooldown.Seconds()),
				})
			}
			time.Sleep(sleep)
			continue
		}
		if breaker.Open() {
			recordEvent(events, eventlog.EventCircuitClosed, map[string]any{"recovered": true})
		}
		breaker.Success()

		for _, u := range updates {
			offset = u.UpdateID + 1
			dispatcher.Enqueue(u)
		}
	}
}

// bootstrapOffset skips any updates that accumulated while the process was
// down, so the bot does not answer a stale backlog on startup.
func bootstrapOffset(t transport.Transport) (int64, error) {
	updates, err := t.GetUpdates(0, 0)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}
	return updates[len(updates)-1].UpdateID + 1, nil
}

// evictLoop periodically drops sessions idle past the configured window.
func evictLoop(ctx context.Context, cfg config.Config, store *session.Store, events *eventlog.Log) {
	ticker := time.NewTicker(cfg.EvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := store.EvictIdle(cfg.SessionMaxIdle)
			if len(evicted) > 0 {
				log.Printf("evicted %d idle sessions", len(evicted))
				recordEvent(events, eventlog.EventSessionEvicted, map[string]any{
					"count": len(evicted),
				})
			}
		}
	}
}

// recordEvent appends a process-level event, logging failures instead of
// interrupting the loop that raised them.
func recordEvent(events *eventlog.Log, eventType string, payload map[string]any) {
	if err := events.Record("", eventType, payload); err != nil {
		log.Printf("eventlog error type=%s: %v", eventType, err)
	}
}
