package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kairo/src/actions"
	"kairo/src/capture"
	"kairo/src/chat"
	"kairo/src/clipboard"
	"kairo/src/config"
	"kairo/src/eventloop"
	"kairo/src/hotkey"
	"kairo/src/llm"
	"kairo/src/logutil"
	"kairo/src/placement"
	"kairo/src/screenshot"
	"kairo/src/singleinstance"
	"kairo/src/store"
	"kairo/src/tasks"
	"kairo/src/ui"
	"kairo/src/worker"
)

type mainOptions struct {
	capture    bool
	screenshot bool
	chat       bool
	apiKeyPath string
	dataDir    string
	console    bool
}

func main() {
	if err := newRootCmd(&mainOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kairo",
		Short:         "Capture selected text or a screenshot and ask an LLM about it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts)
		},
	}
	cmd.Flags().BoolVar(&opts.capture, "capture", false, "Capture the current selection (delegates to a running Kairo)")
	cmd.Flags().BoolVar(&opts.screenshot, "screenshot", false, "Capture a screen region (delegates to a running Kairo)")
	cmd.Flags().BoolVar(&opts.chat, "chat", false, "Open the chat window (delegates to a running Kairo)")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory for tasks, notes and logs")
	cmd.Flags().BoolVar(&opts.console, "console", false, "Also log to stderr")
	cmd.MarkFlagsMutuallyExclusive("capture", "screenshot", "chat")
	return cmd
}

// startupCommand is the command requested on the command line, if any.
func startupCommand(opts mainOptions) (singleinstance.Command, bool) {
	switch {
	case opts.capture:
		return singleinstance.CommandCapture, true
	case opts.screenshot:
		return singleinstance.CommandScreenshot, true
	case opts.chat:
		return singleinstance.CommandShowChat, true
	default:
		return "", false
	}
}

func run(opts mainOptions) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		APIKeyPathOverride: opts.apiKeyPath,
		DataDirOverride:    opts.dataDir,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	startCmd, hasCmd := startupCommand(opts)
	if hasCmd {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		delegated, err := singleinstance.Delegate(ctx, startCmd)
		cancel()
		if delegated {
			return err
		}
	}

	if err := logutil.Setup(logutil.Options{
		Dir:     filepath.Join(cfg.DataDir, "logs"),
		Enabled: cfg.EnableFileLogging,
		Level:   cfg.LogLevel,
		Console: opts.console,
	}); err != nil {
		return err
	}
	log := logutil.Component("main")
	enableDPIAwareness(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return resident(ctx, cfg, startCmd, hasCmd, log)
}

func resident(ctx context.Context, cfg *config.Config, startCmd singleinstance.Command, hasCmd bool, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logutil.Component("kairo")
	log.Info().
		Str("model", cfg.Model).
		Str("base_url", cfg.BaseURL).
		Str("api_key", logutil.RedactKey(cfg.APIKey)).
		Str("hotkey", cfg.Hotkey).
		Str("screenshot_hotkey", cfg.ScreenshotHotkey).
		Str("data_dir", cfg.DataDir).
		Msg("starting Kairo")
	for i, d := range placement.Displays() {
		log.Debug().Int("display", i).Str("bounds", d.String()).Msg("display")
	}

	bridge, err := clipboard.Init()
	if err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	catalog := actions.Default()
	catalog.SetLanguage(cfg.TargetLanguage)
	if err := catalog.Validate(); err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}
	taskManager := tasks.NewManager(st)

	client := llm.New(llm.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		Providers: cfg.Providers,
		Timeout:   cfg.RequestTimeout,
	}, logger)
	pool := worker.New(1, client, logger)
	defer pool.Close()

	shell := ui.New(logger)
	chatWindow := shell.NewChatWindow()
	conv := eventloop.NewConversation(ctx, chat.NewSession(pool, cfg.RequestTimeout, logger), chatWindow, taskManager, st, logger)
	chatWindow.Bind(ui.ChatHandlers{
		Ask:      conv.Ask,
		NewChat:  conv.NewChat,
		SaveTask: conv.SaveTask,
		SaveNote: conv.SaveNote,
		Copy: func() error {
			answer := conv.LastAnswer()
			if answer == "" {
				return errors.New("no answer to copy")
			}
			return bridge.WriteText(answer)
		},
	})

	var coord *capture.Coordinator
	coord, err = capture.New(capture.Options{
		Clipboard:   bridge,
		Screenshots: screenshot.New(logger),
		Catalog:     catalog,
		Windows: capture.Windows{
			NewPicker: func() (capture.ActionPicker, error) { return shell.NewPicker(coord), nil },
			NewChat:   func() (capture.ChatSurface, error) { return conv, nil },
		},
		Displays:     placement.Displays,
		SettleDelay:  cfg.SettleDelay,
		DismissGrace: cfg.DismissGrace,
		Logger:       logger,
		OnState: func(_ uint64, s capture.State) {
			shell.SetStatus(strings.ReplaceAll(s.String(), "-", " "))
		},
	})
	if err != nil {
		return err
	}

	refreshTasks := func() {
		stats, err := taskManager.Stats(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("task stats")
			return
		}
		shell.SetTaskStats(stats)
	}

	loop, err := eventloop.New(eventloop.Options{
		Coordinator: coord,
		Cursor:      placement.Cursor,
		ShowChat:    conv.Open,
		OnStoreChange: func(ch store.Change) {
			if ch.Kind == store.KindTasks {
				refreshTasks()
			}
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	srv := singleinstance.NewServer(loop.HandleCommand, logger)
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("another Kairo instance is running: %w", err)
	}
	defer srv.Close()
	loop.UseServer(srv)
	loop.UseStore(st)

	if listener, err := hotkey.NewListener(loop.Bindings(cfg.Hotkey, cfg.ScreenshotHotkey), logger); err != nil {
		log.Error().Err(err).Msg("hotkeys disabled")
	} else {
		loop.UseHotkeys(listener)
	}

	shell.SetupTray(ui.TrayActions{
		ShowChat:   conv.Open,
		Capture:    loop.Capture,
		Screenshot: loop.Screenshot,
		Quit:       cancel,
	})
	refreshTasks()

	if !client.Configured() {
		shell.ShowError("Kairo is not configured",
			fmt.Sprintf("No API key found. Set OPENROUTER_API_KEY in your .env file or write the key to %s.", cfg.APIKeyPath))
	} else {
		go func() {
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx); err != nil {
				log.Error().Err(err).Msg("LLM ping failed")
				shell.ShowError("LLM unavailable",
					fmt.Sprintf("Startup check failed: %v\n\nPlease verify your API key and network connectivity.", err))
				return
			}
			log.Info().Msg("LLM ping succeeded")
		}()
	}

	done := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		shell.Quit()
		done <- err
	}()
	if hasCmd {
		if err := loop.HandleCommand(startCmd); err != nil {
			log.Warn().Err(err).Msg("startup command failed")
		}
	}

	shell.Run()
	cancel()
	err = <-done
	log.Info().Err(err).Msg("Kairo stopped")
	return err
}
