package main

import (
	"net"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/go-kit/outcome/auth/jwt"
	"github.com/go-kit/outcome/circuitbreaker"
	"github.com/go-kit/outcome/client"
	"github.com/go-kit/outcome/config"
	"github.com/go-kit/outcome/metrics/prometheus"
	"github.com/go-kit/outcome/ratelimit"
	kitot "github.com/go-kit/outcome/tracing/opentracing"
	"github.com/go-kit/outcome/transport"
	httptransport "github.com/go-kit/outcome/transport/http"
)

// env is everything a command needs to send requests.
type env struct {
	client   *client.Client
	logger   log.Logger
	registry *stdprometheus.Registry
}

// config reads the file and environment, then applies flags on top.
func (o *options) config() (config.Config, error) {
	cfg, err := config.Read(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.timeout != 0 {
		cfg.Timeout = o.timeout
	}
	return cfg, cfg.Validate()
}

func (o *options) build() (*env, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	base, _ := cfg.URL()
	allow, _ := config.ParseLevel(cfg.LogLevel)

	var logger log.Logger
	logger = log.NewLogfmtLogger(log.NewSyncWriter(o.stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	logger = level.NewFilter(logger, allow)

	before := []httptransport.RequestFunc{
		kitot.ContextToHTTP(opentracing.GlobalTracer(), logger),
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	for _, h := range o.headers {
		k, v, err := parseHeader(h)
		if err != nil {
			return nil, err
		}
		headers[k] = v
	}
	for k, v := range headers {
		before = append(before, httptransport.SetRequestHeader(k, v))
	}
	if cfg.RequestIDHeader != "" {
		before = append(before, httptransport.SetRequestID(cfg.RequestIDHeader))
	}
	switch {
	case cfg.Auth.JWT.Secret != "":
		before = append(before, jwt.ContextToHTTP())
	case cfg.Auth.Username != "":
		before = append(before, httptransport.SetBasicAuth(cfg.Auth.Username, cfg.Auth.Password))
	}

	doer := httptransport.NewClient(base,
		httptransport.SetClient(&http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			},
		}),
		httptransport.SetClientBefore(before...),
		httptransport.SetClientErrorHandler(transport.NewLogErrorHandler(level.Debug(logger))),
		httptransport.SetMaxBodySize(cfg.MaxBodySize),
	)

	registry := stdprometheus.NewRegistry()
	set, err := prometheus.NewProvider(prometheus.WithRegisterer(registry)).NewSet("outcome")
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}

	options := []client.Option{
		client.WithLogger(logger),
		client.WithMetrics(set),
		client.WithUnauthorized(func() {
			level.Warn(logger).Log("msg", "server rejected our credentials")
		}),
		client.WithMiddleware(kitot.TraceClient(opentracing.GlobalTracer()), middlewares(cfg)...),
	}
	if cfg.DistinctCancel {
		options = append(options, client.WithDistinctCancel())
	}

	return &env{
		client:   client.New(doer, options...),
		logger:   logger,
		registry: registry,
	}, nil
}

// middlewares returns the configured limiter and breaker, outermost first.
func middlewares(cfg config.Config) []transport.Middleware {
	var mw []transport.Middleware
	if cfg.RateLimit.PerSecond > 0 {
		limit := rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst)
		mw = append(mw, ratelimit.NewDelayingLimiter(limit))
	}
	if j := cfg.Auth.JWT; j.Secret != "" {
		method, _ := j.SigningMethod()
		keys := jwt.KeySet{j.KeyID: {Method: method, Key: []byte(j.Secret)}}
		mw = append(mw, jwt.NewSigner(j.KeyID, keys, j.Claims, jwt.WithTTL(j.TTL)).Middleware())
	}
	if cfg.Breaker.Name != "" {
		settings := gobreaker.Settings{
			Name:        cfg.Breaker.Name,
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
		}
		if n := cfg.Breaker.ConsecutiveFailures; n > 0 {
			settings.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= n }
		}
		mw = append(mw, circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(settings)))
	}
	return mw
}
