package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"kairo/src/logutil"
	"kairo/src/singleinstance"
)

// logFile matches where the resident writes its log.
func logFile(dataDir string) string { return filepath.Join(dataDir, "logs", "kairo.log") }

func newLogsCmd(opts *cliOptions) *cobra.Command {
	var (
		n      int
		filter string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent lines of the resident's log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			lines, err := logutil.RecentLines(logFile(e.cfg.DataDir), n)
			if err != nil {
				return fmt.Errorf("failed to read log: %w", err)
			}
			lines = logutil.Filter(lines, filter)
			if opts.jsonOutput {
				return e.printJSON(lines)
			}
			for _, l := range lines {
				fmt.Fprintln(e.out, l)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 50, "Number of lines")
	cmd.Flags().StringVar(&filter, "filter", "", "Only lines containing this text")
	return cmd
}

type delegateOptions struct {
	n        int
	deadline time.Duration
}

type delegateResult struct {
	Launched int     `json:"launched"`
	OK       int32   `json:"ok"`
	Missing  int32   `json:"missing"`
	Errors   int32   `json:"errors"`
	Elapsed  float64 `json:"elapsed_seconds"`
}

func newDelegateCmd(opts *cliOptions) *cobra.Command {
	d := &delegateOptions{}
	cmd := &cobra.Command{
		Use:       "delegate capture|screenshot|chat",
		Short:     "Send a command to the running Kairo; --n fires it concurrently",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"capture", "screenshot", "chat"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			c, err := parseDelegateArg(args[0])
			if err != nil {
				return err
			}
			res := delegate(c, *d)
			if opts.jsonOutput {
				return e.printJSON(res)
			}
			if d.n == 1 && res.Missing == 1 {
				return fmt.Errorf("no running Kairo found")
			}
			fmt.Fprintf(e.out, "launched=%d ok=%d missing=%d err=%d elapsed=%.2fs\n",
				res.Launched, res.OK, res.Missing, res.Errors, res.Elapsed)
			return nil
		},
	}
	cmd.Flags().IntVar(&d.n, "n", 1, "number of concurrent clients")
	cmd.Flags().DurationVar(&d.deadline, "deadline", 5*time.Second, "per-client timeout")
	return cmd
}

func parseDelegateArg(s string) (singleinstance.Command, error) {
	switch strings.ToLower(s) {
	case "capture":
		return singleinstance.CommandCapture, nil
	case "screenshot":
		return singleinstance.CommandScreenshot, nil
	case "chat":
		return singleinstance.CommandShowChat, nil
	default:
		return "", fmt.Errorf("%w: %q", singleinstance.ErrUnknownCommand, s)
	}
}

func delegate(c singleinstance.Command, opts delegateOptions) delegateResult {
	if opts.n < 1 {
		opts.n = 1
	}
	var (
		wg                    sync.WaitGroup
		ok, missing, errCount int32
	)
	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, err := singleinstance.Delegate(ctx, c)
			switch {
			case err != nil:
				atomic.AddInt32(&errCount, 1)
			case delegated:
				atomic.AddInt32(&ok, 1)
			default:
				atomic.AddInt32(&missing, 1)
			}
		}()
	}
	wg.Wait()
	return delegateResult{
		Launched: opts.n,
		OK:       ok,
		Missing:  missing,
		Errors:   errCount,
		Elapsed:  time.Since(start).Seconds(),
	}
}
