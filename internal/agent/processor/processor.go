// Package processor orchestrates command parsing: request validation,
// cache lookup, provider fallback, history recording, and metrics.
package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ai-command-agent/internal/agent/cache"
	"ai-command-agent/internal/agent/history"
	"ai-command-agent/internal/agent/provider"
	apperrors "ai-command-agent/internal/common/errors"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/common/metrics"
	"ai-command-agent/internal/common/observability"
	"ai-command-agent/internal/models"
)

// Config carries the processor limits and identity.
type Config struct {
	Version      string
	MaxBatchSize int
}

// Processor is the command parsing facade. All fields are set at
// construction and never modified; the processor is safe for concurrent use.
type Processor struct {
	registry *provider.Registry
	cache    *cache.Store
	history  history.Repository
	obs      *observability.Observability
	logger   logger.Logger

	version      string
	maxBatchSize int
	startTime    time.Time
	active       atomic.Int64
}

func New(reg *provider.Registry, store *cache.Store, repo history.Repository, obs *observability.Observability, cfg Config, log logger.Logger) *Processor {
	if cfg.MaxBatchSize < 1 {
		cfg.MaxBatchSize = 10
	}
	return &Processor{
		registry:     reg,
		cache:        store,
		history:      repo,
		obs:          obs,
		logger:       log.WithFields(map[string]interface{}{"component": "processor"}),
		version:      cfg.Version,
		maxBatchSize: cfg.MaxBatchSize,
		startTime:    time.Now(),
	}
}

// newCommandID builds a unique command identifier. The uuid fragment keeps
// ids from colliding under concurrent requests in the same millisecond.
func newCommandID() string {
	return fmt.Sprintf("cmd_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Parse handles a single command request. A validation failure returns an
// error; any downstream failure returns an error-shaped response instead,
// so callers always get a CommandResponse for a well-formed request.
func (p *Processor) Parse(ctx context.Context, req models.CommandRequest) (*models.CommandResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.NewRequestValidationError(err.Error())
	}

	p.active.Add(1)
	metrics.ActiveRequests.Inc()
	defer func() {
		p.active.Add(-1)
		metrics.ActiveRequests.Dec()
	}()

	start := time.Now()
	commandID := newCommandID()
	key := cache.Fingerprint(req.Command, req.Context)

	if cached, ok := p.cache.Get(ctx, key); ok {
		cached.CommandID = commandID
		cached.ProcessingTimeMs = time.Since(start).Milliseconds()
		p.record(ctx, req, *cached, start)
		p.logger.Debug("cache hit", map[string]interface{}{
			"command_id": commandID,
			"key":        key,
		})
		return cached, nil
	}

	result, providerName, err := p.registry.Parse(ctx, req.Command, req.Context)
	if err != nil {
		resp := p.errorResponse(commandID, start, err)
		p.record(ctx, req, resp, start)
		p.logger.Error("command parsing failed", map[string]interface{}{
			"command_id": commandID,
			"error":      err.Error(),
		})
		return &resp, nil
	}

	resp := models.CommandResponse{
		CommandID:        commandID,
		Status:           models.StatusCompleted,
		Intent:           result.Intent,
		CommandType:      models.ParseCommandType(result.CommandType),
		Parameters:       result.Parameters,
		Confidence:       result.Confidence,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Provider:         providerName,
	}

	// Only successful parses are cached; failures must retry providers.
	p.cache.Set(ctx, key, resp)
	p.record(ctx, req, resp, start)

	p.logger.Info("command parsed", map[string]interface{}{
		"command_id":   commandID,
		"intent":       resp.Intent,
		"command_type": string(resp.CommandType),
		"provider":     providerName,
		"confidence":   resp.Confidence,
		"priority":     req.EffectivePriority(),
	})
	return &resp, nil
}

// Batch processes up to maxBatchSize requests concurrently, preserving
// input order in the results. Oversized batches are rejected before any
// provider call. A failed item becomes an error-shaped result; it never
// aborts its siblings.
func (p *Processor) Batch(ctx context.Context, reqs []models.CommandRequest) (*models.BatchResponse, error) {
	if len(reqs) > p.maxBatchSize {
		return nil, apperrors.NewBatchSizeExceededError(len(reqs), p.maxBatchSize)
	}

	results := make([]models.CommandResponse, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req models.CommandRequest) {
			defer wg.Done()
			start := time.Now()
			resp, err := p.Parse(ctx, req)
			if err != nil {
				results[i] = p.errorResponse(newCommandID(), start, err)
				return
			}
			results[i] = *resp
		}(i, req)
	}
	wg.Wait()

	return &models.BatchResponse{Results: results, Total: len(results)}, nil
}

// Health probes every registered provider and the cache backend. The
// service is healthy when at least one provider responds.
func (p *Processor) Health(ctx context.Context) *models.HealthResponse {
	providers := make(map[string]string, p.registry.Count())
	anyHealthy := false
	for name, prov := range p.registry.Providers() {
		err := prov.HealthCheck(ctx)
		switch {
		case err == nil:
			providers[name] = models.HealthHealthy
			anyHealthy = true
		case apperrors.CodeOf(err) == apperrors.ErrCodeProviderCallFailed:
			// could not reach the provider at all
			providers[name] = models.HealthError
		default:
			providers[name] = models.HealthUnhealthy
		}
	}

	cacheStatus := models.HealthDisabled
	if p.cache.Enabled() {
		if err := p.cache.Ping(ctx); err != nil {
			cacheStatus = models.HealthUnhealthy
		} else {
			cacheStatus = models.HealthHealthy
		}
	}

	status := models.HealthHealthy
	if !anyHealthy {
		status = models.HealthUnhealthy
	}

	return &models.HealthResponse{
		Status:        status,
		Version:       p.version,
		UptimeSeconds: int64(time.Since(p.startTime).Seconds()),
		AIProviders:   providers,
		CacheStatus:   cacheStatus,
	}
}

// Stats reports advisory counters. The active count is a point-in-time
// snapshot and may be stale by the time the caller reads it.
func (p *Processor) Stats() *models.StatsResponse {
	return &models.StatsResponse{
		UptimeSeconds:  int64(time.Since(p.startTime).Seconds()),
		ActiveRequests: p.active.Load(),
		AIProviders:    p.registry.Count(),
		CacheEnabled:   p.cache.Enabled(),
	}
}

// Version returns the configured service version.
func (p *Processor) Version() string {
	return p.version
}

// Providers returns the registered provider names in fallback order.
func (p *Processor) Providers() []string {
	return p.registry.Names()
}

// History returns the most recent command records, newest first.
func (p *Processor) History(ctx context.Context, limit int) ([]models.CommandRecord, error) {
	records, err := p.history.FindRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewHistoryQueryFailedError(err)
	}
	return records, nil
}

func (p *Processor) errorResponse(commandID string, start time.Time, err error) models.CommandResponse {
	return models.CommandResponse{
		CommandID:        commandID,
		Status:           models.StatusError,
		Intent:           "unknown",
		CommandType:      models.CommandTypeUnknown,
		Parameters:       map[string]interface{}{},
		Confidence:       0,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Provider:         "none",
		Result:           map[string]interface{}{"error": err.Error()},
	}
}

// record updates metrics and appends to the command history. History
// writes are best-effort: a failure is logged and the response unaffected.
func (p *Processor) record(ctx context.Context, req models.CommandRequest, resp models.CommandResponse, start time.Time) {
	elapsed := time.Since(start)

	metrics.CommandsProcessed.WithLabelValues(resp.Status, resp.Provider).Inc()
	metrics.CommandDuration.WithLabelValues(resp.Provider).Observe(elapsed.Seconds())
	if p.obs != nil {
		p.obs.RecordCommandProcessed(ctx, resp.Status, resp.Provider)
		p.obs.RecordCommandDuration(ctx, elapsed, resp.Status)
	}

	if p.history == nil {
		return
	}
	rec := models.CommandRecord{
		ID:               resp.CommandID,
		Command:          req.Command,
		Intent:           resp.Intent,
		CommandType:      resp.CommandType,
		Status:           resp.Status,
		Provider:         resp.Provider,
		Confidence:       resp.Confidence,
		ProcessingTimeMs: resp.ProcessingTimeMs,
		UserID:           req.UserID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := p.history.Save(ctx, rec); err != nil {
		p.logger.Warn("history write failed", map[string]interface{}{
			"command_id": resp.CommandID,
			"error":      err.Error(),
		})
	}
}
