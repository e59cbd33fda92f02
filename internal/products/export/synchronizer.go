// Package export regenerates the flat-file copies of the catalog (datos.txt,
// datos.json, datos.csv) from the authoritative product store.
//
// Every artifact is rewritten whole and replaced atomically, so a reader sees
// either the previous or the new file, never a truncated one. The three files
// are independent: one failing does not stop the others. Calls are
// serialised, so two concurrent refreshes never interleave their writes.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"supermarket-inventory/internal/products"

	"github.com/google/renameio/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	TextFile = "datos.txt"
	JSONFile = "datos.json"
	CSVFile  = "datos.csv"

	dirPerm  = 0o755
	filePerm = 0o644
)

type artifact struct {
	name   string
	render func([]products.Product) ([]byte, error)
}

var artifacts = []artifact{
	{name: TextFile, render: RenderText},
	{name: JSONFile, render: RenderJSON},
	{name: CSVFile, render: RenderCSV},
}

type Metrics struct {
	Failures *prometheus.CounterVec
	Duration prometheus.Histogram
	Products prometheus.Gauge
}

// NewMetrics builds the export collectors and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_export_failures_total",
			Help: "Total number of export artifact writes that failed",
		}, []string{"artifact"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inventory_export_duration_seconds",
			Help:    "Time spent regenerating the export artifacts",
			Buckets: prometheus.DefBuckets,
		}),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_products",
			Help: "Number of products in the last export",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Failures, m.Duration, m.Products)
	}
	return m
}

func (m *Metrics) failed(name string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(name).Inc()
}

func (m *Metrics) observe(elapsed time.Duration, count int) {
	if m == nil {
		return
	}
	m.Duration.Observe(elapsed.Seconds())
	m.Products.Set(float64(count))
}

type Synchronizer struct {
	mu      sync.Mutex
	dir     string
	logger  *slog.Logger
	metrics *Metrics
}

func New(dir string, logger *slog.Logger, metrics *Metrics) *Synchronizer {
	return &Synchronizer{
		dir:     dir,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Synchronizer) Dir() string {
	return s.dir
}

// Synchronize rewrites all three artifacts from items. The returned error
// joins one error per artifact that could not be written.
func (s *Synchronizer) Synchronize(items []products.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(items)
}

// Refresh reads the catalog through load and rewrites the artifacts while
// holding the lock, so the last Refresh to return always reflects a read
// taken after every mutation that triggered an earlier one.
func (s *Synchronizer) Refresh(ctx context.Context, load func(context.Context) ([]products.Product, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load(ctx)
	if err != nil {
		s.logger.Error("export load products failed", "error", err)
		return fmt.Errorf("load products: %w", err)
	}
	return s.writeAll(items)
}

func (s *Synchronizer) writeAll(items []products.Product) error {
	start := time.Now()

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		s.logger.Error("create export dir failed", "dir", s.dir, "error", err)
		for _, a := range artifacts {
			s.metrics.failed(a.name)
		}
		return fmt.Errorf("create export dir %q: %w", s.dir, err)
	}

	var errs []error
	for _, a := range artifacts {
		if err := s.writeArtifact(a, items); err != nil {
			s.logger.Error("export artifact failed", "artifact", a.name, "error", err)
			s.metrics.failed(a.name)
			errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
		}
	}

	s.metrics.observe(time.Since(start), len(items))
	if len(errs) == 0 {
		s.logger.Debug("export artifacts written", "dir", s.dir, "products", len(items))
	}
	return errors.Join(errs...)
}

func (s *Synchronizer) writeArtifact(a artifact, items []products.Product) error {
	data, err := a.render(items)
	if err != nil {
		return err
	}
	return renameio.WriteFile(filepath.Join(s.dir, a.name), data, filePerm)
}
