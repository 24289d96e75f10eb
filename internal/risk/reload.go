package risk

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Holder хранит текущую политику; замена атомарна, читатели не блокируются.
type Holder struct {
	p atomic.Pointer[Policy]
}

func NewHolder(p *Policy) *Holder {
	h := &Holder{}
	if p == nil {
		p = DefaultPolicy()
	}
	h.p.Store(p)
	return h
}

// Policy возвращает действующую политику.
func (h *Holder) Policy() *Policy { return h.p.Load() }

// Swap заменяет политику.
func (h *Holder) Swap(p *Policy) { h.p.Store(p) }

// Reloader следит за файлом политики и перечитывает его после изменений.
type Reloader struct {
	watcher  *fsnotify.Watcher
	holder   *Holder
	path     string
	debounce time.Duration
	logger   *zap.SugaredLogger
}

// NewReloader создаёт наблюдателя за path. Файл должен существовать.
func NewReloader(holder *Holder, path string, logger *zap.SugaredLogger) (*Reloader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("risk policy %q: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}
	return &Reloader{
		watcher:  watcher,
		holder:   holder,
		path:     path,
		debounce: 500 * time.Millisecond,
		logger:   logger,
	}, nil
}

// Reload перечитывает файл; при ошибке действующая политика не меняется.
func (r *Reloader) Reload() error {
	p, err := LoadPolicy(r.path)
	if err != nil {
		return err
	}
	r.holder.Swap(p)
	return nil
}

// Run обрабатывает события файловой системы до отмены ctx.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(r.debounce, func() {
					if err := r.Reload(); err != nil {
						r.logger.Warnw("risk policy reload failed", "path", r.path, "error", err)
						return
					}
					r.logger.Infow("risk policy reloaded", "path", r.path)
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warnw("risk policy watcher error", "error", err)
		}
	}
}
