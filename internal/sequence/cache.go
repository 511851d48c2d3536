package sequence

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/timing"
)

// CachedSampler memoizes sampled poses. Callers always receive their own copy.
type CachedSampler struct {
	Sampler
	poses *cache.Cache
}

func NewCachedSampler(s Sampler, ttl time.Duration) *CachedSampler {
	return &CachedSampler{Sampler: s, poses: cache.New(ttl, 2*ttl)}
}

func (c *CachedSampler) SamplePose(sk *pose.Skeleton, id string, t timing.TimeSpan, looping bool) *pose.Pose {
	key := fmt.Sprintf("%p|%s|%g|%t", sk, id, float64(t), looping)
	if v, ok := c.poses.Get(key); ok {
		return v.(*pose.Pose).Clone()
	}
	p := c.Sampler.SamplePose(sk, id, t, looping)
	c.poses.SetDefault(key, p.Clone())
	return p
}

func (c *CachedSampler) Len() int { return c.poses.ItemCount() }

func (c *CachedSampler) Flush() { c.poses.Flush() }
