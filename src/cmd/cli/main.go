package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kairo/src/actions"
	"kairo/src/chat"
	"kairo/src/classify"
	"kairo/src/config"
	"kairo/src/content"
	"kairo/src/llm"
	"kairo/src/logutil"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	jsonOutput bool
	verbose    bool
	apiKeyPath string
	dataDir    string
}

// env is what every subcommand runs with.
type env struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	log    zerolog.Logger
	opts   *cliOptions
}

func main() {
	if err := newRootCmd(&cliOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kairo-cli",
		Short:         "Kairo actions, tasks and notes from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.PersistentFlags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for tasks, notes and logs")

	cmd.AddCommand(
		newTransformCmd(opts),
		newActionsCmd(opts),
		newTasksCmd(opts),
		newNotesCmd(opts),
		newExportCmd(opts),
		newInfoCmd(opts),
		newLogsCmd(opts),
		newDelegateCmd(opts),
	)
	return cmd
}

// setup loads configuration and routes logging to stderr in verbose mode.
func setup(cmd *cobra.Command, opts *cliOptions) (*env, error) {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	if err := logutil.Setup(logutil.Options{Level: level, Console: opts.verbose}); err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		APIKeyPathOverride: opts.apiKeyPath,
		DataDirOverride:    opts.dataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	e := &env{
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		in:     cmd.InOrStdin(),
		log:    logutil.Component("cli"),
		opts:   opts,
	}
	e.log.Debug().Str("model", cfg.Model).Str("api_key_path", cfg.APIKeyPath).Str("data_dir", cfg.DataDir).Msg("config loaded")
	return e, nil
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

type transformOptions struct {
	filePath    string
	action      string
	instruction string
}

func newTransformCmd(opts *cliOptions) *cobra.Command {
	t := &transformOptions{}
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Run an action on text or a PNG screenshot",
		Example: "  echo 'teh cat' | kairo-cli transform --action fix-grammar\n" +
			"  kairo-cli transform --file shot.png --action extract-text",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runTransform(cmd.Context(), e, *t)
		},
	}
	cmd.Flags().StringVar(&t.filePath, "file", "-", "Input file, text or PNG (use '-' for stdin)")
	cmd.Flags().StringVar(&t.action, "action", string(actions.Summarize), "Action ID (see 'kairo-cli actions')")
	cmd.Flags().StringVar(&t.instruction, "instruction", "", "Freeform instruction, used with --action custom")
	return cmd
}

func readInput(e *env, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(e.in, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
	}
	if len(data) == 0 {
		return nil, errors.New("input is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

// inputContent classifies raw input: PNG data becomes an image, anything
// else text.
func inputContent(data []byte) (content.Content, error) {
	if img, err := classify.Image(data); err == nil {
		return content.FromImage(img), nil
	} else if !errors.Is(err, classify.ErrNotPNG) {
		return content.Content{}, err
	}
	text := string(data)
	if classify.IsBlank(text) {
		return content.Content{}, errors.New("input contains no text")
	}
	return content.FromText(classify.Text(text)), nil
}

// resolveInstruction maps an action to its instruction for the content kind.
func resolveInstruction(catalog *actions.Catalog, c content.Content, id actions.ID, custom string) (string, error) {
	instr, err := catalog.Instruction(c.Kind, id)
	if err != nil {
		return "", err
	}
	if instr == nil {
		if strings.TrimSpace(custom) == "" {
			return "", errors.New("--instruction is required with --action custom")
		}
		return custom, nil
	}
	return *instr, nil
}

type transformResult struct {
	Action    string  `json:"action"`
	Heading   string  `json:"heading"`
	Input     string  `json:"input"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func runTransform(ctx context.Context, e *env, t transformOptions) error {
	if !e.cfg.Configured() {
		return fmt.Errorf("OPENROUTER_API_KEY not found. Checked key file %s and OPENROUTER_API_KEY env var", e.cfg.APIKeyPath)
	}
	data, err := readInput(e, t.filePath)
	if err != nil {
		return err
	}
	c, err := inputContent(data)
	if err != nil {
		return err
	}

	id := actions.ID(t.action)
	catalog := actions.Default()
	catalog.SetLanguage(e.cfg.TargetLanguage)
	instruction, err := resolveInstruction(catalog, c, id, t.instruction)
	if err != nil {
		return err
	}

	client := llm.New(llm.Config{
		APIKey:    e.cfg.APIKey,
		Model:     e.cfg.Model,
		BaseURL:   e.cfg.BaseURL,
		Providers: e.cfg.Providers,
		Timeout:   e.cfg.RequestTimeout,
	}, e.log)

	req := llm.Request{
		SystemPrompt: chat.SystemPrompt(c),
		UserContent:  chat.UserPrompt(c, instruction, true),
		Image:        c.Image,
	}
	e.log.Debug().Str("action", string(id)).Str("content", c.Summary()).Msg("sending request")

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()
	start := time.Now()
	text, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("%s failed: %w", id, err)
	}
	e.log.Debug().Dur("elapsed", elapsed).Int("chars", len(text)).Msg("completed")

	if !e.opts.jsonOutput {
		fmt.Fprint(e.out, text)
		return nil
	}
	input := t.filePath
	if input == "-" {
		input = "stdin"
	}
	return e.printJSON(transformResult{
		Action:    string(id),
		Heading:   actions.DisplayName(id),
		Input:     input,
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len(text),
	})
}

func newActionsCmd(opts *cliOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the available actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			k := content.KindText
			switch kind {
			case "text":
			case "image":
				k = content.KindImage
			default:
				return fmt.Errorf("unknown kind %q (text|image)", kind)
			}
			catalog := actions.Default()
			catalog.SetLanguage(e.cfg.TargetLanguage)
			list := catalog.List(k)
			if opts.jsonOutput {
				return e.printJSON(list)
			}
			for _, a := range list {
				fmt.Fprintf(e.out, "%-14s %s\n", a.ID, a.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "text", "Content kind: text|image")
	return cmd
}
