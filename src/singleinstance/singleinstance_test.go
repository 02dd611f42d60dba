package singleinstance

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func startServer(t *testing.T, h Handler) *Server {
	t.Helper()
	port := freePort(t)
	t.Setenv(PortStartEnvVar, strconv.Itoa(port))
	t.Setenv(PortEndEnvVar, strconv.Itoa(port))

	srv := NewServer(h, zerolog.Nop())
	if err := srv.Listen(); err != nil {
		t.Skipf("loopback unavailable: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand("CAPTURE\n")
	require.NoError(t, err)
	assert.Equal(t, CommandCapture, c)

	c, err = ParseCommand(" SCREENSHOT ")
	require.NoError(t, err)
	assert.Equal(t, CommandScreenshot, c)

	_, err = ParseCommand("STDOUT\n")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDelegateRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var got []Command
	srv := startServer(t, func(c Command) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
		return nil
	})
	assert.NotZero(t, srv.Port())
	assert.True(t, Resident())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	delegated, err := Delegate(ctx, CommandScreenshot)
	require.NoError(t, err)
	assert.True(t, delegated)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Command{CommandScreenshot}, got)
}

func TestDelegateReportsHandlerError(t *testing.T) {
	startServer(t, func(Command) error { return errors.New("not configured") })

	delegated, err := Delegate(context.Background(), CommandCapture)
	assert.True(t, delegated)
	assert.EqualError(t, err, "not configured")
}

func TestSecondListenFails(t *testing.T) {
	startServer(t, func(Command) error { return nil })

	other := NewServer(func(Command) error { return nil }, zerolog.Nop())
	assert.Error(t, other.Listen())
}

func TestDelegateWithoutResident(t *testing.T) {
	port := freePort(t)
	t.Setenv(PortStartEnvVar, strconv.Itoa(port))
	t.Setenv(PortEndEnvVar, strconv.Itoa(port))

	delegated, err := Delegate(context.Background(), CommandCapture)
	assert.NoError(t, err)
	assert.False(t, delegated)
	assert.False(t, Resident())
}

func TestPortRangeClamps(t *testing.T) {
	t.Setenv(PortStartEnvVar, "80")
	t.Setenv(PortEndEnvVar, "70000")
	start, end := portRange()
	assert.Equal(t, 1024, start)
	assert.Equal(t, 65535, end)
}
