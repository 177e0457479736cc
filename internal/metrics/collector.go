// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 收集推理任务执行指标。
type Collector struct {
	// 任务指标
	jobsSubmitted *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	queueWait     *prometheus.HistogramVec
	jobDuration   *prometheus.HistogramVec

	// 资产传输指标
	bytesUploaded   prometheus.Counter
	bytesDownloaded prometheus.Counter

	// 上传缓存指标
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为 nil 时使用默认注册表。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.jobsSubmitted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_submitted_total",
			Help:      "Total inference jobs submitted to the provider queue.",
		},
		[]string{"model"},
	)

	c.jobsFinished = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Total inference jobs finished, by terminal status.",
		},
		[]string{"model", "status"},
	)

	c.queueWait = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_queue_wait_seconds",
			Help:      "Time spent waiting for a worker before the first in-progress event.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"model"},
	)

	c.jobDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "End-to-end job duration from submit to stored outputs.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"model"},
	)

	c.bytesUploaded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_bytes_uploaded_total",
		Help:      "Bytes uploaded to provider object storage.",
	})

	c.bytesDownloaded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_bytes_downloaded_total",
		Help:      "Result media bytes downloaded from the provider.",
	})

	c.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_cache_hits_total",
		Help:      "Input uploads skipped because the buffer was already stored.",
	})

	c.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_cache_misses_total",
		Help:      "Input uploads that went to provider storage.",
	})

	return c
}

// JobSubmitted 记录一次任务提交。
func (c *Collector) JobSubmitted(model string) {
	c.jobsSubmitted.WithLabelValues(model).Inc()
}

// JobFinished 记录任务结束及其终态（completed/failed）。
func (c *Collector) JobFinished(model, status string, duration time.Duration) {
	c.jobsFinished.WithLabelValues(model, status).Inc()
	c.jobDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// QueueWait 记录排队等待时间。
func (c *Collector) QueueWait(model string, wait time.Duration) {
	c.queueWait.WithLabelValues(model).Observe(wait.Seconds())
}

// BytesUploaded 记录上传到对象存储的字节数。
func (c *Collector) BytesUploaded(n int) {
	c.bytesUploaded.Add(float64(n))
}

// BytesDownloaded 记录下载的结果媒体字节数。
func (c *Collector) BytesDownloaded(n int) {
	c.bytesDownloaded.Add(float64(n))
}

// CacheHit 记录一次上传缓存命中。
func (c *Collector) CacheHit() { c.cacheHits.Inc() }

// CacheMiss 记录一次上传缓存未命中。
func (c *Collector) CacheMiss() { c.cacheMisses.Inc() }
