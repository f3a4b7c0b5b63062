// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とハンドラー層から利用する。
type MetricsCollector interface {
	RecordPostCreated()
	RecordPostUpdated()
	RecordSlugRetry()
	RecordSlugConflict()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	postsCreated   prometheus.Counter
	postsUpdated   prometheus.Counter
	slugRetries    prometheus.Counter
	slugConflicts  prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeblog_posts_created_total",
			Help: "作成されたブログ記事の合計数",
		}),
		postsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeblog_posts_updated_total",
			Help: "更新されたブログ記事の合計数",
		}),
		slugRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeblog_slug_retry_total",
			Help: "スラッグのユニーク制約違反によるリトライの合計数",
		}),
		slugConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeblog_slug_conflict_total",
			Help: "リトライ上限超過でスラッグを解決できなかった合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeblog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeblog_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.postsCreated,
		c.postsUpdated,
		c.slugRetries,
		c.slugConflicts,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordPostCreated は記事作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordPostUpdated は記事更新を記録する。
func (c *Collector) RecordPostUpdated() {
	c.postsUpdated.Inc()
}

// RecordSlugRetry はスラッグ再解決リトライを記録する。
func (c *Collector) RecordSlugRetry() {
	c.slugRetries.Inc()
}

// RecordSlugConflict はスラッグ解決のリトライ上限超過を記録する。
func (c *Collector) RecordSlugConflict() {
	c.slugConflicts.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
