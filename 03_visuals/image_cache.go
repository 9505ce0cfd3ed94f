package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// Store is the persistent mapping of image file name → cache entry
type Store interface {
	Get(ctx context.Context, id string) (types.CacheEntry, bool, error)
	Put(ctx context.Context, entry types.CacheEntry) error
	List(ctx context.Context) ([]types.CacheEntry, error)
}

// NewStore opens the cache backend named in the config
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Images.CacheBackend {
	case "redis":
		return NewRedisStore(cfg.Images.RedisAddr, cfg.Images.RedisKey)
	case "file", "":
		return NewFileStore(cfg.Paths.ImageCache), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Images.CacheBackend)
	}
}

// FileStore keeps the mapping in one JSON file. It assumes a single writing
// process; concurrent runs should use RedisStore.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore uses the JSON file at path, created on first Put
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(_ context.Context, id string) (types.CacheEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return types.CacheEntry{}, false, err
	}
	e, ok := m[id]
	if ok {
		e.ID = id
	}
	return e, ok, nil
}

func (f *FileStore) Put(_ context.Context, entry types.CacheEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("cache entry has no id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return err
	}
	m[entry.ID] = entry
	return f.save(m)
}

func (f *FileStore) List(_ context.Context) ([]types.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]types.CacheEntry, 0, len(m))
	for id, e := range m {
		e.ID = id
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// load treats a missing or empty file as an empty mapping
func (f *FileStore) load() (map[string]types.CacheEntry, error) {
	m := make(map[string]types.CacheEntry)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return m, nil
}

// save writes a temp file next to the mapping and renames it over
func (f *FileStore) save(m map[string]types.CacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".images-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
