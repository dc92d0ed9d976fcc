package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"equiptrak/internal/records"
)

const (
	CertificateStrategySequence = "sequence"
	CertificateStrategyRedis    = "redis"
	CertificateStrategyUUID     = "uuid"

	certificateCounterKey = "equiptrak:certificate_number"
)

// SequenceNumberGenerator draws from the certificate_number_seq Postgres
// sequence. nextval is never rolled back, so a number is consumed even when
// the surrounding record is not stored.
type SequenceNumberGenerator struct {
	storage *pgxpool.Pool
	prefix  string
}

func NewSequenceNumberGenerator(storage *pgxpool.Pool, prefix string) *SequenceNumberGenerator {
	return &SequenceNumberGenerator{storage: storage, prefix: prefix}
}

func (g *SequenceNumberGenerator) Next(ctx context.Context) (string, error) {
	var value int64
	if err := g.storage.QueryRow(ctx, "SELECT nextval('certificate_number_seq')").Scan(&value); err != nil {
		return "", fmt.Errorf("nextval certificate_number_seq: %w", err)
	}
	return records.FormatSequenceNumber(g.prefix, value), nil
}

// RedisNumberGenerator uses INCR on a single counter key.
type RedisNumberGenerator struct {
	cache  CacheRepositoryInterface
	key    string
	prefix string
}

func NewRedisNumberGenerator(cache CacheRepositoryInterface, prefix string) *RedisNumberGenerator {
	return &RedisNumberGenerator{cache: cache, key: certificateCounterKey, prefix: prefix}
}

func (g *RedisNumberGenerator) Next(ctx context.Context) (string, error) {
	value, err := g.cache.Incr(ctx, g.key)
	if err != nil {
		return "", fmt.Errorf("incr %s: %w", g.key, err)
	}
	return records.FormatSequenceNumber(g.prefix, value), nil
}

// NewCertificateNumberGenerator picks the implementation named by strategy.
func NewCertificateNumberGenerator(strategy, prefix string, storage *pgxpool.Pool, cache CacheRepositoryInterface) (records.CertificateNumberGenerator, error) {
	switch strategy {
	case "", CertificateStrategySequence:
		return NewSequenceNumberGenerator(storage, prefix), nil
	case CertificateStrategyRedis:
		return NewRedisNumberGenerator(cache, prefix), nil
	case CertificateStrategyUUID:
		return records.NewUUIDGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("unknown certificate number strategy %q", strategy)
	}
}
