package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// CacheHit キャッシュから返した分析
	CacheHit = "hit"
	// CacheMiss プロバイダーを呼び出した分析
	CacheMiss = "miss"

	// OutcomeSuccess プロバイダー呼び出し成功
	OutcomeSuccess = "success"
	// OutcomeError プロバイダー呼び出し失敗
	OutcomeError = "error"

	// CacheOpGet キャッシュ読み出し
	CacheOpGet = "get"
	// CacheOpSet キャッシュ書き込み
	CacheOpSet = "set"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idea_validator",
			Name:      "analyses_total",
			Help:      "Total number of successful analyses, partitioned by cache outcome.",
		},
		[]string{"cache"},
	)

	providerRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idea_validator",
			Name:      "provider_request_seconds",
			Help:      "AI provider call latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider", "outcome"},
	)

	cacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idea_validator",
			Name:      "cache_errors_total",
			Help:      "Cache failures absorbed by the analysis flow, partitioned by operation.",
		},
		[]string{"op"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idea_validator",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, partitioned by method and status code.",
		},
		[]string{"method", "status"},
	)
)

// Register コレクターをレジストリに登録（登録済みは無視）
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		providerRequestSeconds,
		cacheErrorsTotal,
		httpRequestsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis 分析件数を記録
func ObserveAnalysis(cache string) {
	if cache != CacheHit {
		cache = CacheMiss
	}
	analysesTotal.WithLabelValues(cache).Inc()
}

// ObserveProviderCall プロバイダー呼び出しのレイテンシを記録
func ObserveProviderCall(provider string, duration time.Duration, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	if duration < 0 {
		duration = 0
	}
	providerRequestSeconds.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// ObserveCacheError 吸収したキャッシュ失敗を記録
func ObserveCacheError(op string) {
	cacheErrorsTotal.WithLabelValues(op).Inc()
}

// ObserveHTTPRequest HTTPリクエストを記録
func ObserveHTTPRequest(method, status string) {
	httpRequestsTotal.WithLabelValues(method, status).Inc()
}
