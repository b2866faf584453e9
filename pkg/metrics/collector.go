package metrics

import (
	"sync"
	"time"
)

// CollectionStat describes one collection at a point in time
type CollectionStat struct {
	Items int
	Bytes int
}

// Source reports the current size of each collection
type Source interface {
	CollectionStats() map[string]CollectionStat
}

// Collector periodically samples a Source into the collection gauges
type Collector struct {
	source   Source
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(source Source, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.Collect()

		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Collect samples the source once
func (c *Collector) Collect() {
	for name, stat := range c.source.CollectionStats() {
		CollectionItems.WithLabelValues(name).Set(float64(stat.Items))
		CollectionBytes.WithLabelValues(name).Set(float64(stat.Bytes))
	}
}
