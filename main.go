package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/wordbook/internal/config"
	"github.com/example/wordbook/internal/database"
	"github.com/example/wordbook/internal/lookup"
	"github.com/example/wordbook/internal/remote"
	"github.com/example/wordbook/internal/scheduler"
	"github.com/example/wordbook/internal/session"
	"github.com/example/wordbook/internal/speech"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	userName string
	envFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "wordbook",
		Short:        "Vocabulary notebooks with quizzes, spelling drills and audio review",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&userName, "user", "u", os.Getenv("WORDBOOK_USER"), "username")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(notebooksCmd())
	rootCmd.AddCommand(renameCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(dropCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(quizCmd())
	rootCmd.AddCommand(spellCmd())
	rootCmd.AddCommand(cardsCmd())
	rootCmd.AddCommand(carouselCmd())
	rootCmd.AddCommand(compileCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(syncCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app wires the engine for one command invocation
type app struct {
	cfg     *config.Config
	db      *sqlx.DB
	sheet   *database.SheetRepository
	sess    *session.Session
	sched   *scheduler.Scheduler
	speaker *speech.GoogleSynthesizer
	out     *console
}

// openApp connects the engine. Speech synthesis is billed per request, so the
// synthesizer is only created for commands that keep the audio.
func openApp(ctx context.Context, out *console, withSpeech bool) (*app, error) {
	cfg := config.Load(envFile)

	dsn := cfg.DBPath
	if cfg.DBType == database.DriverPostgres {
		dsn = cfg.DBDSN
	}
	db, err := database.Connect(cfg.DBType, dsn)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db, sheet: database.NewSheetRepository(db), out: out}
	svc := session.Services{
		Sheet:    a.sheet,
		Enricher: newLookupService(cfg),
		Output:   out,
	}

	if withSpeech && cfg.GoogleCredentials == "" {
		log.Printf("Speech disabled: GOOGLE_CREDENTIALS_JSON is not set")
	}
	if withSpeech && cfg.GoogleCredentials != "" {
		synth, err := speech.NewGoogleSynthesizer(ctx, cfg.GoogleCredentials, cfg.Voices(), cfg.SpeechSpeed)
		if err != nil {
			log.Printf("Speech disabled: %v", err)
		} else {
			a.speaker = synth
			svc.Speaker = synth
		}
	}

	if cfg.SupabaseURL != "" {
		pub, err := speech.NewPublisher(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			log.Printf("Audio publishing disabled: %v", err)
		} else {
			svc.Publisher = pub
		}
	}

	sess, err := session.Open(ctx, userName, cfg, svc)
	var unavailable *remote.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		fmt.Fprintf(os.Stderr, "warning: %v; working with an empty table\n", err)
	case err != nil:
		a.closeResources()
		return nil, err
	}
	a.sess = sess

	a.sched = scheduler.New(sess, cfg.SyncRetryInterval, cfg.RemoteTimeout)
	if err := a.sched.Start(); err != nil {
		log.Printf("Background sync disabled: %v", err)
	}
	return a, nil
}

func newLookupService(cfg *config.Config) *lookup.Service {
	var translator *lookup.Translator
	if cfg.OpenAIKey != "" {
		t, err := lookup.NewTranslator(cfg.OpenAIKey, cfg.OpenAIModel, "", cfg.RemoteTimeout)
		if err != nil {
			log.Printf("Translation lookups disabled: %v", err)
		} else {
			translator = t
		}
	}
	return lookup.NewService(translator, lookup.NewPhoneticClient(cfg.PhoneticAPIURL, cfg.RemoteTimeout))
}

// Close makes a last attempt to save pending changes and releases resources
func (a *app) Close() {
	a.sched.Stop()
	if a.sess.Pending() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RemoteTimeout)
		if err := a.sess.Flush(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: changes were not saved to the remote table: %v\n", err)
		}
		cancel()
	}
	a.closeResources()
}

func (a *app) closeResources() {
	if a.speaker != nil {
		a.speaker.Close()
	}
	if err := a.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// withApp runs fn against a freshly opened engine with speech turned off
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	return runApp(cmd, newConsole(cmd.OutOrStdout(), ""), false, fn)
}

// withSpeechApp runs fn with speech synthesis enabled. Spoken audio is
// written to audioDir when it is set.
func withSpeechApp(cmd *cobra.Command, audioDir string, fn func(a *app) error) error {
	if audioDir != "" {
		if err := os.MkdirAll(audioDir, 0755); err != nil {
			return fmt.Errorf("failed to create audio directory: %v", err)
		}
	}
	return runApp(cmd, newConsole(cmd.OutOrStdout(), audioDir), true, fn)
}

func runApp(cmd *cobra.Command, out *console, withSpeech bool, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), out, withSpeech)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// warnSave reports a failed save without failing the command
func warnSave(err error) error {
	var unavailable *remote.UnavailableError
	if errors.As(err, &unavailable) {
		fmt.Fprintf(os.Stderr, "warning: %v; will retry\n", err)
		return nil
	}
	return err
}

func remoteCount(ctx context.Context, a *app) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RemoteTimeout)
	defer cancel()
	n, err := a.sheet.Count(ctx)
	if n > 0 {
		n-- // header
	}
	return n, err
}
