// Package redis provides the Redis history store and distributed locker used
// when several concord replicas share one history.
package redis
