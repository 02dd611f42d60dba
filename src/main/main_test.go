package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kairo/src/singleinstance"
)

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--screenshot", "--api-key-path", "/tmp/key", "--data-dir", "/tmp/kairo"}))

	assert.True(t, opts.screenshot)
	assert.False(t, opts.capture)
	assert.Equal(t, "/tmp/key", opts.apiKeyPath)
	assert.Equal(t, "/tmp/kairo", opts.dataDir)
}

func TestStartupCommand(t *testing.T) {
	tests := []struct {
		name string
		opts mainOptions
		want singleinstance.Command
		ok   bool
	}{
		{name: "none", opts: mainOptions{}},
		{name: "capture", opts: mainOptions{capture: true}, want: singleinstance.CommandCapture, ok: true},
		{name: "screenshot", opts: mainOptions{screenshot: true}, want: singleinstance.CommandScreenshot, ok: true},
		{name: "chat", opts: mainOptions{chat: true}, want: singleinstance.CommandShowChat, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := startupCommand(tt.opts)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagsAreExclusive(t *testing.T) {
	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs([]string{"--capture", "--screenshot"})
	cmd.RunE = func(*cobra.Command, []string) error { return nil }
	assert.Error(t, cmd.Execute())
}
