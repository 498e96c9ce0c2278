package orphans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"certmanager/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultListKey = "certmanager:evidence:orphans"

// LogSink records orphans as warnings only. It is used when no redis is
// configured.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogSink{log: log}
}

func (s *LogSink) RecordOrphan(ctx context.Context, orphan domain.OrphanedFile) error {
	s.log.WithFields(logrus.Fields{
		"evidence_id":    orphan.EvidenceID,
		"requirement_id": orphan.RequirementID,
		"path":           orphan.Path,
		"reason":         orphan.Reason,
	}).Warn("orphaned evidence file")
	return nil
}

// RedisSink appends orphans as JSON to a redis list so an operator can
// sweep them later.
type RedisSink struct {
	client *redis.Client
	key    string
}

func NewRedisSink(addr, password string, db int, key string) (*RedisSink, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisSinkWithClient(client, key), nil
}

func NewRedisSinkWithClient(client *redis.Client, key string) *RedisSink {
	if key == "" {
		key = DefaultListKey
	}
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) RecordOrphan(ctx context.Context, orphan domain.OrphanedFile) error {
	if orphan.DetectedAt.IsZero() {
		orphan.DetectedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(orphan)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("record orphan: %w", err)
	}
	return nil
}

// List returns up to limit recorded orphans, oldest first. A limit of zero
// or less returns all of them.
func (s *RedisSink) List(ctx context.Context, limit int64) ([]domain.OrphanedFile, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}
	raw, err := s.client.LRange(ctx, s.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}
	out := make([]domain.OrphanedFile, 0, len(raw))
	for _, item := range raw {
		var o domain.OrphanedFile
		if err := json.Unmarshal([]byte(item), &o); err != nil {
			return nil, fmt.Errorf("decode orphan: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

type Recorder interface {
	RecordOrphan(ctx context.Context, orphan domain.OrphanedFile) error
}

// Fallback tries Primary first and hands the record to Secondary when
// Primary fails.
type Fallback struct {
	Primary   Recorder
	Secondary Recorder
}

func (f Fallback) RecordOrphan(ctx context.Context, orphan domain.OrphanedFile) error {
	if f.Primary != nil {
		err := f.Primary.RecordOrphan(ctx, orphan)
		if err == nil || f.Secondary == nil {
			return err
		}
	}
	if f.Secondary != nil {
		return f.Secondary.RecordOrphan(ctx, orphan)
	}
	return nil
}
