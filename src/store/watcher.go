package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 50 * time.Millisecond

// Kind names which data file changed.
type Kind string

const (
	KindTasks    Kind = "tasks"
	KindNotes    Kind = "notes"
	KindSettings Kind = "settings"
)

// Change is sent when a data file was written, by this process or another.
type Change struct {
	Kind Kind
	At   time.Time
}

// Watch reports changes to the store's files until ctx is done. Bursts of
// writes to one file are coalesced.
func (s *Store) Watch(ctx context.Context) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan Change, 16)
	var (
		mu       sync.Mutex
		debounce = map[Kind]*time.Timer{}
		wg       sync.WaitGroup
	)

	notify := func(k Kind) {
		defer wg.Done()
		select {
		case out <- Change{Kind: k, At: time.Now()}:
		default:
			// Channel full, drop event to prevent blocking
		}
	}

	go func() {
		defer func() {
			_ = w.Close()
			mu.Lock()
			for _, t := range debounce {
				if t.Stop() {
					wg.Done()
				}
			}
			mu.Unlock()
			wg.Wait()
			close(out)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				k, ok := kindOf(ev)
				if !ok {
					continue
				}
				mu.Lock()
				if t, exists := debounce[k]; exists && t.Stop() {
					wg.Done()
				}
				wg.Add(1)
				debounce[k] = time.AfterFunc(debounceDelay, func() { notify(k) })
				mu.Unlock()
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}

func kindOf(ev fsnotify.Event) (Kind, bool) {
	// Only care about writes/creates/renames (file changes)
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	switch strings.TrimSuffix(name, ".json") {
	case "tasks":
		return KindTasks, true
	case "notes":
		return KindNotes, true
	case "settings":
		return KindSettings, true
	}
	return "", false
}
