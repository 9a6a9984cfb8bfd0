package badge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileProvider stores badge values in a YAML file ("app_id: count") that
// several processes may share. Changes written by other processes are
// picked up through fsnotify and reported to the listeners.
type FileProvider struct {
	path string
	log  *zap.Logger

	// mu serializes file access and guards seen.
	mu     sync.Mutex
	seen   map[string]int
	closed bool

	disp    *dispatcher
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewFileProvider opens (creating it if needed) the badge file at path and
// starts watching it.
func NewFileProvider(path string, log *zap.Logger) (*FileProvider, error) {
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create badge directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeCounts(path, map[string]int{}); err != nil {
			return nil, err
		}
	}

	seen, err := readCounts(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// The directory is watched rather than the file: writes replace the
	// file through a rename, which would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &FileProvider{
		path:    path,
		log:     log,
		seen:    seen,
		disp:    newDispatcher(clockz.RealClock, 0),
		watcher: watcher,
		cancel:  cancel,
	}

	p.wg.Add(1)
	go p.watch(ctx)

	return p, nil
}

// Count reads the current value for appID from the file.
func (p *FileProvider) Count(_ context.Context, appID string) (int, error) {
	if appID == "" {
		return 0, ErrUnknownApp
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}

	counts, err := readCounts(p.path)
	if err != nil {
		return 0, err
	}
	return counts[appID], nil
}

// SetCount rewrites the file with the new value and confirms it to the
// listeners.
func (p *FileProvider) SetCount(ctx context.Context, appID string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(appID, count); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	counts, err := readCounts(p.path)
	if err != nil {
		return err
	}
	counts[appID] = count
	if err := writeCounts(p.path, counts); err != nil {
		return err
	}

	// Record the value before the watcher sees our own write, so only
	// foreign changes are reported from there.
	p.seen[appID] = count
	p.disp.publish(appID, count)
	return nil
}

// AddChangeListener registers fn for appID's badge changes.
func (p *FileProvider) AddChangeListener(appID string, fn ChangeFunc) (func(), error) {
	if appID == "" {
		return nil, ErrUnknownApp
	}
	return p.disp.add(appID, fn)
}

// Close stops watching the file.
func (p *FileProvider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	err := p.watcher.Close()
	p.wg.Wait()
	p.disp.close()
	return err
}

func (p *FileProvider) watch(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.reload()

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			// Continue watching despite errors
			p.log.Warn("badge file watch error", zap.Error(err))
		}
	}
}

// reload re-reads the file and publishes every value that differs from
// the last one seen. An entry removed from the file reads as zero.
func (p *FileProvider) reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		p.log.Debug("failed to reload badge file", zap.Error(err))
		return
	}
	// Our own writes never leave the file empty; an empty read is another
	// writer between truncate and write.
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}

	counts, err := parseCounts(p.path, data)
	if err != nil {
		// Partially written files are retried on the next event.
		p.log.Debug("failed to reload badge file", zap.Error(err))
		return
	}

	for appID, count := range counts {
		if count < 0 {
			p.log.Warn("ignoring negative badge count",
				zap.String("app_id", appID), zap.Int("count", count))
			continue
		}
		if prev, ok := p.seen[appID]; ok && prev == count {
			continue
		}
		p.seen[appID] = count
		p.disp.publish(appID, count)
	}

	for appID, prev := range p.seen {
		if _, ok := counts[appID]; ok || prev == 0 {
			continue
		}
		p.seen[appID] = 0
		p.disp.publish(appID, 0)
	}
}

func readCounts(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read badge file: %w", err)
	}
	return parseCounts(path, data)
}

func parseCounts(path string, data []byte) (map[string]int, error) {
	counts := make(map[string]int)
	if err := yaml.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("failed to parse badge file %s: %w", path, err)
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	return counts, nil
}

func writeCounts(path string, counts map[string]int) error {
	data, err := yaml.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode badge counts: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".badges-*")
	if err != nil {
		return fmt.Errorf("failed to write badge file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write badge file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write badge file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace badge file: %w", err)
	}
	return nil
}
