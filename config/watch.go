package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadCooldown 两次重载之间的最短间隔，吸收编辑器多次写入。
const reloadCooldown = 500 * time.Millisecond

// Watcher 监听配置文件写入并回调最新配置。
type Watcher struct {
	log        *zap.Logger
	path       string
	watcher    *fsnotify.Watcher
	lastReload time.Time
}

func NewWatcher(log *zap.Logger, path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config file: %w", err)
	}
	return &Watcher{log: log, path: path, watcher: fsw}, nil
}

// Start 开始监听；onUpdate 收到通过校验的最新配置。
func (w *Watcher) Start(ctx context.Context, onUpdate func(AppConfig)) {
	go w.watch(ctx, onUpdate)
}

func (w *Watcher) Close() error { return w.watcher.Close() }

func (w *Watcher) watch(ctx context.Context, onUpdate func(AppConfig)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(w.lastReload) < reloadCooldown {
				continue
			}
			w.lastReload = time.Now()

			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload rejected", zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("path", w.path))
			onUpdate(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}
