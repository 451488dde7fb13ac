package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cpascale43/minipack/internal/config"
	"github.com/cpascale43/minipack/internal/errors"
	"github.com/cpascale43/minipack/internal/graph"
	"github.com/cpascale43/minipack/internal/linker"
	"github.com/cpascale43/minipack/internal/logging"
	"github.com/cpascale43/minipack/internal/resolver"
)

// WriteFileFunc writes the bundle to its destination. Injected so callers
// control where output lands; the default writes to the local filesystem.
type WriteFileFunc func(path string, data []byte, perm os.FileMode) error

// MkdirAllFunc creates the output directory tree
type MkdirAllFunc func(path string, perm os.FileMode) error

// Result carries the outcome of one pipeline run
type Result struct {
	Bundle     *linker.Bundle
	Graph      *graph.ModuleGraph
	Order      []string
	OutputPath string
	Duration   time.Duration
	CacheHit   bool
	Error      error
	Timestamp  time.Time
}

// ResultCallback is invoked after every pipeline run, success or failure
type ResultCallback func(Result)

// Pipeline drives a full bundle build: graph construction from the entry,
// linearization under the configured cycle policy, emission, and writing
// the output file. Unchanged source trees are detected by content hash and
// served from the previous result.
type Pipeline struct {
	cfg     *config.Config
	logger  logging.Logger
	emitter *linker.Emitter
	builder *graph.Builder
	metrics *Metrics

	writeFile WriteFileFunc
	mkdirAll  MkdirAllFunc

	callbackMu sync.RWMutex
	callbacks  []ResultCallback

	stateMu    sync.Mutex
	lastHash   string
	lastResult *Result
}

// NewPipeline creates a pipeline for the given configuration
func NewPipeline(cfg *config.Config, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.WithComponent("build")

	baseDir, err := filepath.Abs(cfg.Resolve.Root)
	if err != nil {
		baseDir = cfg.Resolve.Root
	}

	res := resolver.NewFileResolver(cfg.Resolve.Root, cfg.Resolve.Extensions)

	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		emitter:   linker.NewEmitter(baseDir, logger),
		builder:   graph.NewBuilder(res, logger),
		metrics:   NewMetrics(),
		writeFile: os.WriteFile,
		mkdirAll:  os.MkdirAll,
	}
}

// SetWriter replaces the output write capability. Pass nil to keep the
// current function for either slot.
func (p *Pipeline) SetWriter(write WriteFileFunc, mkdir MkdirAllFunc) {
	if write != nil {
		p.writeFile = write
	}
	if mkdir != nil {
		p.mkdirAll = mkdir
	}
}

// AddCallback registers a callback invoked after every run
func (p *Pipeline) AddCallback(cb ResultCallback) {
	p.callbackMu.Lock()
	defer p.callbackMu.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// Metrics returns the pipeline's metrics tracker
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Build runs the full pipeline once. The result's Error field carries any
// failure; the output file is only touched after emission succeeds, so a
// failed run never leaves a partial bundle behind.
func (p *Pipeline) Build(ctx context.Context) Result {
	start := time.Now()

	g, err := p.builder.Build(ctx, p.cfg.Entry)
	if err != nil {
		return p.finish(ctx, Result{Error: err, Duration: time.Since(start), Timestamp: start})
	}

	var order []string
	if p.cfg.StrictCycles {
		order, err = g.LinearizeStrict()
		if err != nil {
			return p.finish(ctx, Result{Graph: g, Error: err, Duration: time.Since(start), Timestamp: start})
		}
	} else {
		order = g.Linearize()
	}

	hash := contentHash(g, order)

	p.stateMu.Lock()
	if hash == p.lastHash && p.lastResult != nil {
		cached := Result{
			Bundle:     p.lastResult.Bundle,
			Graph:      g,
			Order:      order,
			OutputPath: p.lastResult.OutputPath,
			Duration:   time.Since(start),
			CacheHit:   true,
			Timestamp:  start,
		}
		p.stateMu.Unlock()
		p.logger.Debug(ctx, "source tree unchanged, reusing previous bundle", "hash", hash[:12])
		return p.finish(ctx, cached)
	}
	p.stateMu.Unlock()

	bundle, err := p.emitter.Emit(ctx, g, order)
	if err != nil {
		return p.finish(ctx, Result{Graph: g, Order: order, Error: err, Duration: time.Since(start), Timestamp: start})
	}

	outputPath := p.cfg.OutputFile()
	if err := p.mkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		ioErr := errors.NewIOError(errors.ErrCodeWriteFailed, "creating output directory "+filepath.Dir(outputPath), err)
		return p.finish(ctx, Result{Graph: g, Order: order, Error: ioErr, Duration: time.Since(start), Timestamp: start})
	}
	if err := p.writeFile(outputPath, bundle.Output, 0644); err != nil {
		ioErr := errors.NewIOError(errors.ErrCodeWriteFailed, "writing bundle to "+outputPath, err)
		return p.finish(ctx, Result{Graph: g, Order: order, Error: ioErr, Duration: time.Since(start), Timestamp: start})
	}

	result := Result{
		Bundle:     bundle,
		Graph:      g,
		Order:      order,
		OutputPath: outputPath,
		Duration:   time.Since(start),
		Timestamp:  start,
	}

	p.stateMu.Lock()
	p.lastHash = hash
	p.lastResult = &result
	p.stateMu.Unlock()

	p.logger.Info(ctx, "bundle written",
		"output", outputPath,
		"modules", len(order),
		"size_bytes", bundle.Size,
		"duration", result.Duration.String(),
	)

	return p.finish(ctx, result)
}

// finish records metrics and fans the result out to callbacks
func (p *Pipeline) finish(ctx context.Context, result Result) Result {
	p.metrics.Record(result)

	if result.Error != nil {
		p.logger.Error(ctx, result.Error, "build failed", "duration", result.Duration.String())
	}

	p.callbackMu.RLock()
	callbacks := make([]ResultCallback, len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.callbackMu.RUnlock()

	for _, cb := range callbacks {
		cb(result)
	}
	return result
}

// contentHash fingerprints the linearized tree: the emission order and
// every module's source bytes. Identical trees hash identically, so an
// unchanged tree is a cache hit.
func contentHash(g *graph.ModuleGraph, order []string) string {
	h := sha256.New()
	for _, path := range order {
		h.Write([]byte(path))
		h.Write([]byte{0})
		if module, ok := g.Get(path); ok {
			h.Write([]byte(module.Source))
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
