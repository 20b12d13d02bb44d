// Package ratelimiter throttles API callers with a token bucket.
//
// A Bucket consumes tokens from a Store keyed per caller. MemoryStore keeps
// buckets in process; RedisStore shares them between replicas with an atomic
// script. KeyFunc helpers derive the caller key from a request, ClientIP
// being the usual choice.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	res, err := bucket.Allow(ctx, ratelimiter.ClientIP(r))
//	ratelimiter.SetHeaders(w, res)
//	if !res.Allowed() { ... }
package ratelimiter
