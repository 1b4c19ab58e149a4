package wikipedia

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"

	"golang.org/x/sync/singleflight"
)

// ReferenceLoader scrapes the S&P 500 constituents page once per process.
type ReferenceLoader struct {
	Config  models.MReferenceConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	table   *models.MReferenceTable
	fetches atomic.Int64
}

// -----------------------------------------------------------------------------

func NewReferenceLoader(cfg models.MReferenceConfig, netMgr interfaces.INetworkManager, l *logger.Logger) *ReferenceLoader {
	return &ReferenceLoader{
		Config:  cfg,
		Network: netMgr,
		Logger:  l,
	}
}

// -----------------------------------------------------------------------------

// Cached returns the stored table without touching the network.
func (r *ReferenceLoader) Cached() (*models.MReferenceTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table, r.table != nil
}

// Fetches is the number of network fetches performed so far.
func (r *ReferenceLoader) Fetches() int64 {
	return r.fetches.Load()
}

// -----------------------------------------------------------------------------

// Load returns the reference table, fetching it on first use. Concurrent first
// calls share one fetch, which is detached from any single caller: a cancelled
// ctx only ends that caller's wait. Failures are not stored, so a later call
// retries.
func (r *ReferenceLoader) Load(ctx context.Context) (*models.MReferenceTable, error) {
	if t, ok := r.Cached(); ok {
		return t, nil
	}

	ch := r.group.DoChan("reference", func() (interface{}, error) {
		// another caller may have finished between Cached and DoChan
		if t, ok := r.Cached(); ok {
			return t, nil
		}

		t, err := r.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.table = t
		r.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, helpers.NewDataSourceError("reference load abandoned", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.MReferenceTable), nil
	}
}

// -----------------------------------------------------------------------------

func (r *ReferenceLoader) fetch(ctx context.Context) (*models.MReferenceTable, error) {
	r.fetches.Add(1)
	r.Logger.Info("Loading reference table from %s", r.Config.URL)

	body, err := r.Network.Get(ctx, r.Config.URL, nil)
	if err != nil {
		return nil, helpers.NewDataSourceError("reference page unreachable", err)
	}

	raw, err := parseFirstTable(body)
	if err != nil {
		return nil, helpers.NewDataSourceError("reference page has no parseable table", err)
	}

	table, err := r.buildTable(raw)
	if err != nil {
		return nil, helpers.NewDataSourceError("reference table layout changed", err)
	}

	r.Logger.Info("Loaded %d reference entries across %d sectors", table.Len(), len(table.Sectors()))
	return table, nil
}

// -----------------------------------------------------------------------------

func (r *ReferenceLoader) buildTable(raw *htmlTable) (*models.MReferenceTable, error) {
	symbolIdx := columnIndex(raw.Header, r.Config.SymbolColumn)
	if symbolIdx < 0 {
		return nil, fmt.Errorf("column %q not found in %v", r.Config.SymbolColumn, raw.Header)
	}
	sectorIdx := columnIndex(raw.Header, r.Config.SectorColumn)
	if sectorIdx < 0 {
		return nil, fmt.Errorf("column %q not found in %v", r.Config.SectorColumn, raw.Header)
	}
	securityIdx := columnIndex(raw.Header, r.Config.SecurityColumn)

	entries := make([]models.MReferenceEntry, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if row[symbolIdx] == "" {
			continue
		}
		e := models.MReferenceEntry{
			Symbol: row[symbolIdx],
			Sector: row[sectorIdx],
		}
		if securityIdx >= 0 {
			e.Security = row[securityIdx]
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("table has no symbol rows")
	}

	return models.NewReferenceTable(r.Config.URL, raw.Header, raw.Rows, entries), nil
}

// -----------------------------------------------------------------------------

func columnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
