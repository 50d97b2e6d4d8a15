package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the conversation metrics.
type Collectors struct {
	SessionsStarted prometheus.Counter
	Answers         *prometheus.CounterVec
	Recommendations *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Collectors {
	c := &Collectors{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "racketbot_sessions_started_total",
			Help: "Total number of conversations started",
		}),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "racketbot_answers_total",
				Help: "Accepted answers per prompt key",
			},
			[]string{"key", "valid"},
		),
		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "racketbot_recommendations_total",
				Help: "Recommendation exchanges by outcome",
			},
			[]string{"outcome"},
		),
		ServiceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "racketbot_recommend_duration_seconds",
				Help:    "Duration of recommendation service calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		registry: prometheus.NewRegistry(),
	}
	c.registry.MustRegister(
		c.SessionsStarted,
		c.Answers,
		c.Recommendations,
		c.ServiceDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Hooks records engine lifecycle events.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.EventBase) {
			c.SessionsStarted.Inc()
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			valid := "true"
			if !e.Valid {
				valid = "false"
			}
			c.Answers.WithLabelValues(e.Key, valid).Inc()
		},
		OnRecommend: func(ctx context.Context, e *domain.RecommendEvent) {
			outcome := string(e.Outcome)
			c.Recommendations.WithLabelValues(outcome).Inc()
			c.ServiceDuration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
		},
	}
}
