package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kairo/src/llm"
)

type completerFunc func(ctx context.Context, req llm.Request) (string, error)

func (f completerFunc) Complete(ctx context.Context, req llm.Request) (string, error) {
	return f(ctx, req)
}

func TestSubmitRunsJob(t *testing.T) {
	p := New(1, completerFunc(func(_ context.Context, req llm.Request) (string, error) {
		return "echo: " + req.UserContent, nil
	}), zerolog.Nop())
	defer p.Close()

	done := make(chan string, 1)
	ok := p.Submit(context.Background(), llm.Request{UserContent: "hi"}, func(text string, err error) {
		require.NoError(t, err)
		done <- text
	})
	require.True(t, ok)

	select {
	case got := <-done:
		assert.Equal(t, "echo: hi", got)
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestSubmitBackPressure(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := New(1, completerFunc(func(ctx context.Context, _ llm.Request) (string, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return "", nil
	}), zerolog.Nop())

	noop := func(string, error) {}
	require.True(t, p.Submit(context.Background(), llm.Request{}, noop))
	<-started
	// Worker busy, the single queue slot takes one more.
	require.True(t, p.Submit(context.Background(), llm.Request{}, noop))
	assert.False(t, p.Submit(context.Background(), llm.Request{}, noop))

	close(release)
	p.Close()
}

func TestCancelledJobSkipsCompleter(t *testing.T) {
	called := false
	p := New(1, completerFunc(func(context.Context, llm.Request) (string, error) {
		called = true
		return "", nil
	}), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errc := make(chan error, 1)
	require.True(t, p.Submit(ctx, llm.Request{}, func(_ string, err error) { errc <- err }))
	assert.True(t, errors.Is(<-errc, context.Canceled))
	p.Close()
	assert.False(t, called)
}

func TestSubmitReplacesAbandonedQueuedJob(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := New(1, completerFunc(func(ctx context.Context, _ llm.Request) (string, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return "done", nil
	}), zerolog.Nop())

	noop := func(string, error) {}
	require.True(t, p.Submit(context.Background(), llm.Request{}, noop))
	<-started

	abandoned, cancel := context.WithCancel(context.Background())
	dropped := make(chan error, 1)
	require.True(t, p.Submit(abandoned, llm.Request{}, func(_ string, err error) { dropped <- err }))
	cancel()

	got := make(chan string, 1)
	require.True(t, p.Submit(context.Background(), llm.Request{}, func(text string, _ error) { got <- text }))
	assert.ErrorIs(t, <-dropped, context.Canceled)

	close(release)
	select {
	case text := <-got:
		assert.Equal(t, "done", text)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement job never ran")
	}
	p.Close()
}
