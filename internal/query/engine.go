// Package query computes aggregate status reports and identifier search
// over the currently-loaded dataset. All computation is synchronous and
// read-only against the processor's dataset snapshot.
package query

import (
	"itrq/internal/config"
	"itrq/internal/errors"
	"itrq/internal/logging"
	"itrq/internal/processor"
	"itrq/internal/records"
)

// Engine answers aggregate and search queries.
type Engine struct {
	processor *processor.Processor
	logger    *logging.Logger
	limit     int
}

// NewEngine creates a query engine over the given processor.
func NewEngine(proc *processor.Processor, cfg *config.Config, logger *logging.Logger) *Engine {
	limit := cfg.Search.Limit
	if limit <= 0 {
		limit = config.DefaultSearchLimit
	}
	return &Engine{
		processor: proc,
		logger:    logger,
		limit:     limit,
	}
}

// dataset returns the current dataset, or a NoData error when the last
// load produced nothing to query.
func (e *Engine) dataset() (*records.Dataset, error) {
	ds := e.processor.Dataset()
	if ds.Empty() {
		return nil, errors.New(errors.NoData, "no data loaded", nil)
	}
	return ds, nil
}
