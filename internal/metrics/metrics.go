package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	TweetsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweets_written_total",
		Help: "Tweets created, updated or deleted",
	}, []string{"op"})

	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Successful registrations",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweet_cache_lookups_total",
		Help: "Tweet cache lookups by kind and result",
	}, []string{"kind", "result"})
)
