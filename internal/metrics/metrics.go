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
// サービス層・ミドルウェアから利用する。
type MetricsCollector interface {
	RecordGenerationSuccess()
	RecordGenerationFailure(reason string)
	RecordGenerationLatency(duration time.Duration)
	RecordWeatherFailure()
	RecordOutfitsSaved(count int)
	RecordCalendarSync(ok bool)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generationSuccess prometheus.Counter
	generationFail    *prometheus.CounterVec
	generationLatency prometheus.Histogram
	weatherFail       prometheus.Counter
	outfitsSaved      prometheus.Counter
	calendarSync      *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generationSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_generation_success_total",
			Help: "コーディネートプラン生成成功の合計数",
		}),
		generationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardrobe_generation_fail_total",
			Help: "コーディネートプラン生成失敗の合計数",
		}, []string{"reason"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wardrobe_generation_latency_seconds",
			Help:    "生成モデルによるプラン生成のレイテンシ（秒）",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		weatherFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_weather_fail_total",
			Help: "天気API呼び出し失敗の合計数",
		}),
		outfitsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_outfits_saved_total",
			Help: "保存されたコーディネートの合計数",
		}),
		calendarSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardrobe_calendar_sync_total",
			Help: "カレンダー同期の結果別の合計数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardrobe_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.generationSuccess,
		c.generationFail,
		c.generationLatency,
		c.weatherFail,
		c.outfitsSaved,
		c.calendarSync,
		c.httpStatus,
	)

	return c
}

// RecordGenerationSuccess はプラン生成成功を記録する。
func (c *Collector) RecordGenerationSuccess() {
	c.generationSuccess.Inc()
}

// RecordGenerationFailure はプラン生成失敗を理由別に記録する。
func (c *Collector) RecordGenerationFailure(reason string) {
	c.generationFail.WithLabelValues(reason).Inc()
}

// RecordGenerationLatency は生成モデル呼び出しのレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.generationLatency.Observe(duration.Seconds())
}

// RecordWeatherFailure は天気API失敗を記録する。
func (c *Collector) RecordWeatherFailure() {
	c.weatherFail.Inc()
}

// RecordOutfitsSaved は保存したコーディネート数を記録する。
func (c *Collector) RecordOutfitsSaved(count int) {
	c.outfitsSaved.Add(float64(count))
}

// RecordCalendarSync はカレンダー同期の結果を記録する。
func (c *Collector) RecordCalendarSync(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	c.calendarSync.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordGenerationSuccess()              {}
func (NopCollector) RecordGenerationFailure(string)        {}
func (NopCollector) RecordGenerationLatency(time.Duration) {}
func (NopCollector) RecordWeatherFailure()                 {}
func (NopCollector) RecordOutfitsSaved(int)                {}
func (NopCollector) RecordCalendarSync(bool)               {}
func (NopCollector) RecordHTTPStatus(int)                  {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
