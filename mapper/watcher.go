package mapper

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zeptools/gw-mapper/svc"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reloads the mapping documents of its DAOs when they are written.
// A document that no longer compiles is logged and the DAO keeps serving the
// statements it had.
type Watcher struct {
	Debounce time.Duration

	parent context.Context
	mu     sync.Mutex
	daos   map[string][]*DAO // by absolute document path
	fw     *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan error
}

var _ svc.Service = (*Watcher)(nil)

// NewWatcher builds a watcher that stops on its own when parent is done.
func NewWatcher(parent context.Context) *Watcher {
	return &Watcher{
		Debounce: defaultDebounce,
		parent:   parent,
		daos:     make(map[string][]*DAO),
		done:     make(chan error, 1),
	}
}

// Watch registers d. DAOs without a document path are ignored.
// Must be called before Start.
func (w *Watcher) Watch(d *DAO) error {
	if d.TemplatePath() == "" {
		return nil
	}
	abs, err := filepath.Abs(d.TemplatePath())
	if err != nil {
		return fmt.Errorf("watch %s: %w", d.TemplatePath(), err)
	}
	w.mu.Lock()
	w.daos[abs] = append(w.daos[abs], d)
	w.mu.Unlock()
	return nil
}

func (w *Watcher) Name() string {
	return "mapping-watcher"
}

func (w *Watcher) Done() <-chan error {
	return w.done
}

// Start watches the directory of every registered document.
func (w *Watcher) Start() error {
	if w.cancel != nil {
		return nil // already started
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.mu.Lock()
	dirs := make(map[string]struct{})
	for p := range w.daos {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	w.mu.Unlock()
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	w.fw = fw
	ctx, cancel := context.WithCancel(w.parent)
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(ctx)
	log.Printf("[INFO][MAPPER] watching %d mapping documents", len(w.daos))
	return nil
}

// Stop cancels the loop and waits for it. The result is delivered on Done.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		err := w.fw.Close()
		if err != nil {
			log.Printf("[WARN][MAPPER] watcher close: %v", err)
		}
		log.Println("[INFO][MAPPER] watcher stopped")
		w.done <- err
	}()
	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			p, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			_, watched := w.daos[p]
			w.mu.Unlock()
			if watched {
				pending[p] = struct{}{}
				timer.Reset(w.Debounce)
			}
		case <-timer.C:
			for p := range pending {
				w.reload(p)
				delete(pending, p)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN][MAPPER] watch error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) reload(p string) {
	w.mu.Lock()
	daos := append([]*DAO(nil), w.daos[p]...)
	w.mu.Unlock()
	for _, d := range daos {
		if err := d.Reload(); err != nil {
			log.Printf("[ERROR][MAPPER] reload %s: %v", p, err)
			continue
		}
		log.Printf("[INFO][MAPPER] reloaded %s", p)
	}
}
