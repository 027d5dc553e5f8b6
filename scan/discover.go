package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auctionscan/log"
)

// DiscoverConfig controls how far around the active set the discoverer probes and how
// hard it hits the node while doing so.
type DiscoverConfig struct {
	Window        uint64 // probed on each side of the active id range
	FallbackRange uint64 // ids 1..FallbackRange probed when the active set is empty
	BatchSize     int    // concurrent probes in flight
	BatchPause    time.Duration
}

// Discoverer finds the set of auction ids worth showing: everything the ledger reports
// as active, plus recently ended or finalized neighbors probed around that range.
type Discoverer struct {
	reader *Reader
	cfg    DiscoverConfig
}

func NewDiscoverer(reader *Reader, cfg DiscoverConfig) *Discoverer {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Discoverer{reader: reader, cfg: cfg}
}

// Discover returns the discovered ids in ascending order with no duplicates. The
// active-set read must succeed; a probe failure only drops that one id. Cancellation
// mid-probe stops new probes, waits for the ones in flight, and returns the partial
// set.
func (d *Discoverer) Discover(ctx context.Context) ([]uint64, error) {
	active, err := d.reader.ActiveIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("active auction set unavailable: %w", err)
	}

	known := make(map[uint64]bool, len(active))
	for _, id := range active {
		known[id] = true
	}

	var probes []uint64
	if len(active) > 0 {
		min, max := active[0], active[0]
		for _, id := range active[1:] {
			if id < min {
				min = id
			}
			if id > max {
				max = id
			}
		}
		lo := uint64(1)
		if min > d.cfg.Window {
			lo = min - d.cfg.Window
		}
		for id := lo; id <= max+d.cfg.Window; id++ {
			if !known[id] {
				probes = append(probes, id)
			}
		}
	} else {
		for id := uint64(1); id <= d.cfg.FallbackRange; id++ {
			probes = append(probes, id)
		}
	}

	found := d.probe(ctx, probes)
	for id := range known {
		found = append(found, id)
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found, nil
}

// probe checks each candidate id for existence, at most cfg.BatchSize at a time,
// pausing between batches to stay within node rate limits.
func (d *Discoverer) probe(ctx context.Context, ids []uint64) []uint64 {
	var (
		wg    sync.WaitGroup
		mutex sync.Mutex
		found []uint64
	)
	sem := make(chan struct{}, d.cfg.BatchSize)
	for i, id := range ids {
		if ctx.Err() != nil {
			log.Infof("discovery cancelled, %v of %v probes started", i, len(ids))
			break
		}
		if i > 0 && i%d.cfg.BatchSize == 0 && d.cfg.BatchPause > 0 {
			time.Sleep(d.cfg.BatchPause)
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			defer func() { <-sem }()
			record, err := d.reader.Auction(ctx, id)
			if err != nil {
				log.Warnf("probe of auction %v failed: %v", id, err)
				return
			}
			if record == nil || !record.Exists() {
				return
			}
			mutex.Lock()
			found = append(found, id)
			mutex.Unlock()
		}(id)
	}
	wg.Wait()
	return found
}
