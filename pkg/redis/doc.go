// Package redis connects to the Redis server that backs the policy
// repository when NOTIFY_POLICY_BACKEND=redis.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	repo := policy.NewRedisRepository(client, cfg.KeyPrefix)
package redis
