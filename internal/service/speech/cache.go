package speech

import (
	"context"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

// DefaultCacheSize is the number of synthesized clips kept in memory.
const DefaultCacheSize = 128

// CachedSynthesizer memoizes results of the wrapped Synthesizer keyed by
// voice, rate and text. Failed syntheses are not cached.
type CachedSynthesizer struct {
	next  Synthesizer
	cache *lru.Cache[string, *speechmodel.SynthesisResult]
}

// NewCachedSynthesizer wraps next. A size <= 0 returns next unchanged.
func NewCachedSynthesizer(next Synthesizer, size int) (Synthesizer, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[string, *speechmodel.SynthesisResult](size)
	if err != nil {
		return nil, err
	}
	return &CachedSynthesizer{next: next, cache: cache}, nil
}

func (c *CachedSynthesizer) Name() string { return c.next.Name() }

func (c *CachedSynthesizer) Voices(ctx context.Context) ([]speechmodel.Voice, error) {
	return c.next.Voices(ctx)
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	key := cacheKey(req)
	if hit, ok := c.cache.Get(key); ok {
		return hit, nil
	}
	result, err := c.next.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, result)
	return result, nil
}

// Len reports the number of cached clips.
func (c *CachedSynthesizer) Len() int { return c.cache.Len() }

func cacheKey(req speechmodel.SynthesisRequest) string {
	return req.VoiceID + "\x00" + strconv.Itoa(req.Rate) + "\x00" + req.Text
}
