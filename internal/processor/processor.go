// Package processor owns the in-memory dataset and gates every access
// through the staleness-aware disk cache: a valid cache entry is served
// without touching the source workbook, anything else triggers a fresh
// load through the loader and a cache rewrite.
package processor

import (
	"math"
	"sync"

	"itrq/internal/cache"
	"itrq/internal/config"
	"itrq/internal/loader"
	"itrq/internal/logging"
	"itrq/internal/records"
)

// Processor coordinates the loader, the cache store, and the dataset.
type Processor struct {
	cfg    *config.Config
	logger *logging.Logger
	loader *loader.Loader
	store  *cache.Store

	mu      sync.RWMutex
	dataset *records.Dataset
}

// New constructs a processor and performs the initial load.
func New(cfg *config.Config, logger *logging.Logger) *Processor {
	p := &Processor{
		cfg:    cfg,
		logger: logger,
		loader: loader.New(cfg, logger),
		store:  cache.NewStore(cfg.CacheDir, logger),
	}
	p.load()
	return p
}

var (
	sharedOnce sync.Once
	shared     *Processor
)

// Shared returns the process-wide processor, constructing it on first use.
// Construction is guarded so concurrent first accesses cannot race to
// build two datasets; later calls are lock-free.
func Shared(cfg *config.Config, logger *logging.Logger) *Processor {
	sharedOnce.Do(func() {
		shared = New(cfg, logger)
	})
	return shared
}

// Dataset returns the current in-memory dataset.
func (p *Processor) Dataset() *records.Dataset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dataset
}

// load serves from cache when valid, otherwise reads the source fresh.
func (p *Processor) load() {
	if p.store.Valid(p.cfg.SourceFile) {
		ds, meta, err := p.store.Load()
		if err == nil {
			ds.SourcePath = p.cfg.SourceFile
			p.setDataset(ds)
			p.logger.Info("Loaded records from cache", map[string]interface{}{
				"records": meta.RecordCount,
			})
			return
		}
		// Corrupt cache is a miss, not a failure.
		p.logger.Warn("Cache unreadable, reloading from source", map[string]interface{}{
			"error": err.Error(),
		})
	}
	p.loadFresh()
}

// loadFresh reads from the source workbook (with the loader's fallback
// semantics) and persists the result for next time.
func (p *Processor) loadFresh() {
	ds := p.loader.Load()
	p.setDataset(ds)

	if ds.Degraded {
		return
	}

	// Persist only results that came from the primary source: entries are
	// validated against its mtime, so caching fallback data under it
	// would serve the wrong records.
	if ds.SourcePath != p.cfg.SourceFile {
		p.logger.Debug("Skipping cache persist for non-primary source", map[string]interface{}{
			"loadedFrom": ds.SourcePath,
		})
		return
	}

	mtime, ok := cache.SourceMtime(p.cfg.SourceFile)
	if !ok {
		return
	}
	if err := p.store.Save(ds.Records, mtime); err != nil {
		// The in-memory dataset is fine; only the cache-for-next-time
		// is lost.
		p.logger.Warn("Failed to persist cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (p *Processor) setDataset(ds *records.Dataset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dataset = ds
}

// ReloadResult reports the outcome of a forced reload.
type ReloadResult struct {
	Success     bool   `json:"success"`
	RecordCount int    `json:"recordCount"`
	Degraded    bool   `json:"degraded,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Reload deletes the cache artifacts unconditionally and forces a fresh
// read from the source.
func (p *Processor) Reload() *ReloadResult {
	if err := p.store.Clear(); err != nil {
		p.logger.Warn("Failed to clear cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	p.logger.Info("Forcing reload from source", map[string]interface{}{
		"source": p.cfg.SourceFile,
	})
	p.loadFresh()

	ds := p.Dataset()
	return &ReloadResult{
		Success:     !ds.Degraded && !ds.Empty(),
		RecordCount: ds.Len(),
		Degraded:    ds.Degraded,
		Reason:      ds.DegradedReason,
	}
}

// CacheStatus describes the persisted cache entry's state.
type CacheStatus struct {
	Exists      bool    `json:"exists"`
	RecordCount int     `json:"recordCount,omitempty"`
	AgeMinutes  float64 `json:"ageMinutes,omitempty"`
	Valid       bool    `json:"valid"`
}

// CacheStatus reports whether a cache entry exists, how old it is, and
// whether it would be served on the next load.
func (p *Processor) CacheStatus() *CacheStatus {
	if !p.store.Exists() {
		return &CacheStatus{Exists: false, Valid: false}
	}

	meta, err := p.store.ReadMeta()
	if err != nil {
		return &CacheStatus{Exists: true, Valid: false}
	}

	return &CacheStatus{
		Exists:      true,
		RecordCount: meta.RecordCount,
		AgeMinutes:  math.Round(meta.Age().Minutes()*10) / 10,
		Valid:       p.store.Valid(p.cfg.SourceFile),
	}
}
