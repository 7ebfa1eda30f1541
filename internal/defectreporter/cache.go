package defectreporter

import (
	"context"
	"fmt"
	"time"

	"defect-reporter/internal/common/database"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/common/metrics"
	"defect-reporter/internal/fieldmap"
)

const (
	settingsCacheKey = "defectreporter:settings"
	mappingsCacheKey = "defectreporter:fieldmappings:%s:%s"
)

// CachedClient puts a Redis cache-aside in front of an API. Any cache error
// falls through to the wrapped API.
type CachedClient struct {
	api    API
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedClient(api API, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedClient {
	return &CachedClient{api: api, cache: cache, ttl: ttl, logger: log}
}

func MappingsKey(project, issueType string) string {
	return fmt.Sprintf(mappingsCacheKey, project, issueType)
}

func (c *CachedClient) GetJiraIntegrationSettings(ctx context.Context) (*IntegrationSettings, error) {
	var cached IntegrationSettings
	if c.lookup(ctx, settingsCacheKey, &cached) {
		return &cached, nil
	}

	settings, err := c.api.GetJiraIntegrationSettings(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, settingsCacheKey, settings)
	return settings, nil
}

func (c *CachedClient) GetFieldMappings(ctx context.Context, project, issueType string) ([]fieldmap.Descriptor, error) {
	key := MappingsKey(project, issueType)

	var cached []fieldmap.Descriptor
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	descriptors, err := c.api.GetFieldMappings(ctx, project, issueType)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, descriptors)
	return descriptors, nil
}

// Invalidate drops the cached settings and the mappings of one issue type.
func (c *CachedClient) Invalidate(ctx context.Context, project, issueType string) error {
	return c.cache.Del(ctx, settingsCacheKey, MappingsKey(project, issueType))
}

func (c *CachedClient) lookup(ctx context.Context, key string, out interface{}) bool {
	found, err := c.cache.GetJSON(ctx, key, out)
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return false
	}
	if found {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return found
}

func (c *CachedClient) store(ctx context.Context, key string, v interface{}) {
	if err := c.cache.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
