package prompt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"goaly/internal/logger"
)

const manifestName = "prompts.yaml"

// 中文说明：
// Manager 从目录加载 .txt 提示词模板并支持热更新；
// 目录缺失或单个模板缺失时退回编译内置的默认模板，
// 保证能力函数在任何部署形态下都有可用提示词。

type Manager struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string // name -> content
}

func NewManager(dir string) *Manager {
	m := &Manager{dir: strings.TrimSpace(dir), cache: map[string]string{}}
	if m.dir != "" {
		if err := m.Load(); err != nil {
			logger.Warnf("加载提示词目录失败，使用内置模板: %v", err)
		}
	}
	return m
}

// Load 扫描目录：先读 prompts.yaml 清单（name -> 模板内容），
// 再读单个 .txt 文件，文件覆盖清单中的同名项。
func (m *Manager) Load() error {
	if m.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}
	cache := make(map[string]string, len(entries))
	if b, err := os.ReadFile(filepath.Join(m.dir, manifestName)); err == nil {
		var manifest map[string]string
		if err := yaml.Unmarshal(b, &manifest); err != nil {
			return err
		}
		for name, content := range manifest {
			cache[strings.TrimSpace(name)] = content
		}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(m.dir, e.Name()))
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		cache[name] = string(b)
	}
	m.mu.Lock()
	m.cache = cache
	m.mu.Unlock()
	logger.Debugf("提示词模板已加载: dir=%s count=%d", m.dir, len(cache))
	return nil
}

// Get 取模板内容；目录中没有时退回内置默认值。
func (m *Manager) Get(name string) string {
	m.mu.RLock()
	content, ok := m.cache[name]
	m.mu.RUnlock()
	if ok && strings.TrimSpace(content) != "" {
		return content
	}
	return builtin[name]
}

// Watch 监听目录变化并自动重载，直到 ctx 取消。
func (m *Manager) Watch(ctx context.Context) error {
	if m.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := m.Load(); err != nil {
					logger.Errorf("提示词重载失败 (%s): %v", evt.Name, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("提示词目录监听错误: %v", err)
			}
		}
	}()
	return nil
}
