// Package redis connects a go-redis client with retries and exposes a
// healthcheck probe. The refresh token store in store/redis runs on top of it.
package redis
