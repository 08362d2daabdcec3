package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// patternFile is the YAML document shape for pattern overlay files:
//
//	patterns:
//	  - id: docket_number
//	    type: case
//	    expr: 'No\.\s+\d{2}-\d{1,5}'
//	    before: case
type patternFile struct {
	Patterns []*Pattern `yaml:"patterns"`
}

// LoadFile loads every pattern from a single YAML file into the
// library. Patterns whose IDs are already registered are replaced in
// place, so loading the same file twice is harmless.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if len(file.Patterns) == 0 {
		return fmt.Errorf("no patterns declared in %s", filepath.Base(path))
	}

	for _, p := range file.Patterns {
		if err := l.Register(p); err != nil {
			return fmt.Errorf("registering pattern %q: %w", p.ID, err)
		}
	}
	return nil
}

// LoadDirectory loads all YAML pattern files from a directory. A
// missing directory loads nothing. Files failing to load are collected
// into one error; patterns from well-formed files still register.
func (l *Library) LoadDirectory(dir string) error {
	l.mu.Lock()
	l.dir = dir
	l.mu.Unlock()

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := l.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading patterns: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// Watch starts watching the directory last passed to LoadDirectory,
// reloading changed pattern files into the library as they are written.
// Removed files keep their last loaded patterns until the next restart.
func (l *Library) Watch() error {
	l.mu.RLock()
	dir := l.dir
	l.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	l.mu.Lock()
	l.watcher = watcher
	l.stopChan = make(chan struct{})
	l.mu.Unlock()

	go l.watchLoop()

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	return nil
}

// watchLoop handles file system events until StopWatch.
func (l *Library) watchLoop() {
	logger := l.log()
	l.mu.RLock()
	watcher, stop := l.watcher, l.stopChan
	l.mu.RUnlock()
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := l.LoadFile(event.Name); err != nil {
				logger.Warn("reloading pattern file failed",
					zap.String("file", event.Name),
					zap.Error(err))
				continue
			}
			logger.Info("reloaded pattern file", zap.String("file", event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("pattern watcher error", zap.Error(err))
		}
	}
}

// StopWatch stops watching the pattern directory.
func (l *Library) StopWatch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopChan != nil {
		close(l.stopChan)
		l.stopChan = nil
	}
	if l.watcher != nil {
		l.watcher.Close()
		l.watcher = nil
	}
}
