package stats

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE

	statsFilename = "stats"
)

// EnableMemoryStatistics starts a go routine that periodically logs memory
// usage and number of go routines of the process. Once the context is
// cancelled, the current prometheus metrics are appended to the stats file
// in the given directory.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dir string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				LogMemoryStatistics()
			case <-ctx.Done():
				if err := DumpPrometheusMetrics(dir); err != nil {
					log.WithError(err).Warn("failed to dump prometheus metrics")
				}
				return
			}
		}
	}()
}

func toMegabytes(bytes uint64) float64 {
	return float64(bytes) / MEGABYTE
}

// LogMemoryStatistics logs memory statistics using go runtime library.
func LogMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.WithFields(log.Fields{
		"total_alloc_mb": toMegabytes(memStats.TotalAlloc),
		"heap_alloc_mb":  toMegabytes(memStats.HeapAlloc),
		"mallocs":        memStats.Mallocs,
		"frees":          memStats.Frees,
		"goroutines":     runtime.NumGoroutine(),
	}).Info("memory statistics")
}

// DumpPrometheusMetrics appends the metrics of the default registry to the
// stats file.
func DumpPrometheusMetrics(dir string) error {
	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(
		filepath.Join(dir, statsFilename),
		os.O_APPEND|os.O_CREATE|os.O_RDWR,
		0644,
	)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(
		time.Now().UTC().Format(time.RFC3339) + "\n",
	); err != nil {
		return err
	}
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
