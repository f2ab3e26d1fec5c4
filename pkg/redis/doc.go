// Package redis provides connection helpers around go-redis: a Connect with
// startup retries and a readiness-probe healthcheck. The rate limiter in
// pkg/ratelimiter builds its shared store on top of the client returned here.
package redis
