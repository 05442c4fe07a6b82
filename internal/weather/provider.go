package weather

import (
	"context"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

// Fetcher downloads hourly weather for a location.
type Fetcher interface {
	TMY(ctx context.Context, lat, lon float64) (*model.Weather, error)
}

// Provider resolves weather from the cache, then the API, then the synthetic fallback.
// Fetcher and Cache may be nil.
type Provider struct {
	Fetcher Fetcher
	Cache   *Cache
}

func NewProvider(f Fetcher, c *Cache) *Provider {
	return &Provider{Fetcher: f, Cache: c}
}

// Get never fails for a valid location: API errors degrade to Fallback.
// The returned metadata says which path produced the data.
func (p *Provider) Get(ctx context.Context, lat, lon float64) (*model.Weather, error) {
	if err := model.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}
	key := CacheKey(lat, lon)
	if w, until, ok := p.Cache.Get(key); ok {
		out := *w
		out.Meta.Source = model.SourceCache
		out.Meta.CachedUntil = until
		log.Debug().Float64("lat", lat).Float64("lon", lon).Msg("weather cache hit")
		return &out, nil
	}

	if p.Fetcher != nil {
		w, err := p.Fetcher.TMY(ctx, lat, lon)
		if err == nil {
			w.Meta.CachedUntil = p.Cache.Set(key, w)
			return w, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("weather fetch failed, using fallback")
	}
	return Fallback(lat, lon, 0), nil
}
