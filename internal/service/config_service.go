package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// configService implements ConfigService.
type configService struct {
	client Caller
	cache  cache.Cache
	sfg    singleflight.Group
	logger zerolog.Logger
}

// NewConfigService creates a config service that caches successful
// responses per locale. A nil cache disables caching.
func NewConfigService(client Caller, c cache.Cache, logger zerolog.Logger) ConfigService {
	if c == nil {
		c = cache.Nop{}
	}
	return &configService{
		client: client,
		cache:  c,
		logger: logger.With().Str("service", "config").Logger(),
	}
}

func configCacheKey(locale string) string {
	return "config:" + locale
}

// Get returns the delivery configuration. Concurrent misses for the same
// locale share one backend call.
func (s *configService) Get(ctx context.Context) model.Result[model.StoreConfig] {
	key := configCacheKey(gateway.LocaleFromContext(ctx))

	// The shared call outlives any one caller, so it keeps the values of ctx
	// but not its cancellation.
	shared := context.WithoutCancel(ctx)

	v, _, _ := s.sfg.Do(key, func() (interface{}, error) {
		if cached, ok := s.fromCache(shared, key); ok {
			return cached, nil
		}

		resp, err := s.client.Call(shared, "/api/config", gateway.Request{})
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to fetch store config")
			return model.Fail[model.StoreConfig](model.GenericErrorMessage, 0), nil
		}
		if resp.Failed() {
			return model.Fail[model.StoreConfig](resp.Error, resp.Status), nil
		}

		cfg, err := gateway.Decode[model.StoreConfig](resp)
		if err != nil || cfg == nil {
			s.logger.Warn().Err(err).Msg("unexpected store config payload")
			return model.Fail[model.StoreConfig](model.GenericErrorMessage, resp.Status), nil
		}

		// Store in the background so the response is not held up by the cache.
		payload := append([]byte(nil), resp.Data...)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, key, payload); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("cache set error")
			}
		}()

		return model.OK(cfg, resp.Status), nil
	})

	return v.(model.Result[model.StoreConfig])
}

func (s *configService) fromCache(ctx context.Context, key string) (model.Result[model.StoreConfig], bool) {
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache get error")
		}
		return model.Result[model.StoreConfig]{}, false
	}

	var cfg model.StoreConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return model.Result[model.StoreConfig]{}, false
	}
	return model.OK(&cfg, http.StatusOK), true
}
