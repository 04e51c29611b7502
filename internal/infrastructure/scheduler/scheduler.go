// Package scheduler is a durable delayed-job queue on Redis. Jobs are
// keyed; scheduling an existing key replaces its payload and fire time.
//
// A claimed job moves from the due set to the lease set until it completes
// or is retried. Leases that expire (the worker died mid-run) are put back
// on the due set by the next poll.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "tapcard:jobs"

// Job is one scheduled unit of work.
type Job struct {
	Key      string          `json:"key"`
	Tag      string          `json:"tag"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	FireAt   int64           `json:"fire_at"`
	Attempts int             `json:"attempts"`
}

// Decode unmarshals the job payload into v.
func (j *Job) Decode(v interface{}) error {
	return json.Unmarshal(j.Payload, v)
}

type RedisScheduler struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisScheduler(client *redis.Client, prefix string) *RedisScheduler {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisScheduler{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisScheduler) dueKey() string   { return s.prefix + ":due" }
func (s *RedisScheduler) jobsKey() string  { return s.prefix + ":jobs" }
func (s *RedisScheduler) leaseKey() string { return s.prefix + ":leases" }
func (s *RedisScheduler) tagKey(tag string) string {
	return s.prefix + ":tag:" + tag
}

// Schedule stores the job to fire after delay, replacing any job with the
// same key.
func (s *RedisScheduler) Schedule(ctx context.Context, key, tag, kind string, payload interface{}, delay time.Duration) error {
	if key == "" {
		return errors.New("scheduler: empty job key")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("scheduler: encode payload: %w", err)
	}
	job := &Job{
		Key:     key,
		Tag:     tag,
		Kind:    kind,
		Payload: raw,
		FireAt:  s.now().Add(delay).UnixMilli(),
	}
	return s.put(ctx, job)
}

func (s *RedisScheduler) put(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("scheduler: encode job: %w", err)
	}

	prev, err := s.get(ctx, job.Key)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != nil && prev.Tag != "" && prev.Tag != job.Tag {
			pipe.SRem(ctx, s.tagKey(prev.Tag), job.Key)
		}
		pipe.HSet(ctx, s.jobsKey(), job.Key, data)
		pipe.ZAdd(ctx, s.dueKey(), redis.Z{Score: float64(job.FireAt), Member: job.Key})
		if job.Tag != "" {
			pipe.SAdd(ctx, s.tagKey(job.Tag), job.Key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scheduler: store job %s: %w", job.Key, err)
	}
	return nil
}

// Get returns the pending job for key, or nil when none is stored.
func (s *RedisScheduler) Get(ctx context.Context, key string) (*Job, error) {
	return s.get(ctx, key)
}

func (s *RedisScheduler) get(ctx context.Context, key string) (*Job, error) {
	raw, err := s.client.HGet(ctx, s.jobsKey(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scheduler: load job %s: %w", key, err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("scheduler: decode job %s: %w", key, err)
	}
	return &job, nil
}

// Cancel removes a pending job. Cancelling an unknown key is a no-op.
func (s *RedisScheduler) Cancel(ctx context.Context, key string) error {
	job, err := s.get(ctx, key)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.dueKey(), key)
		pipe.ZRem(ctx, s.leaseKey(), key)
		pipe.HDel(ctx, s.jobsKey(), key)
		if job != nil && job.Tag != "" {
			pipe.SRem(ctx, s.tagKey(job.Tag), key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scheduler: cancel %s: %w", key, err)
	}
	return nil
}

// CancelAll removes every pending job carrying tag.
func (s *RedisScheduler) CancelAll(ctx context.Context, tag string) error {
	keys, err := s.client.SMembers(ctx, s.tagKey(tag)).Result()
	if err != nil {
		return fmt.Errorf("scheduler: list tag %s: %w", tag, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			members := make([]interface{}, len(keys))
			for i, k := range keys {
				members[i] = k
			}
			pipe.ZRem(ctx, s.dueKey(), members...)
			pipe.ZRem(ctx, s.leaseKey(), members...)
			pipe.HDel(ctx, s.jobsKey(), keys...)
		}
		pipe.Del(ctx, s.tagKey(tag))
		return nil
	})
	if err != nil {
		return fmt.Errorf("scheduler: cancel tag %s: %w", tag, err)
	}
	return nil
}

// Pending returns the number of jobs waiting to fire.
func (s *RedisScheduler) Pending(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, s.dueKey()).Result()
}

// dueKeys lists up to limit keys whose fire time has passed.
func (s *RedisScheduler) dueKeys(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return s.client.ZRangeByScore(ctx, s.dueKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: int64(limit),
	}).Result()
}

// claimScript moves a due key to the lease set and returns its job.
var claimScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
	return false
end
local data = redis.call('HGET', KEYS[2], ARGV[1])
if not data then
	return false
end
redis.call('ZADD', KEYS[3], ARGV[2], ARGV[1])
return data
`)

// claim leases key until now+lease. Only the caller that moved it off the
// due set may run the job.
func (s *RedisScheduler) claim(ctx context.Context, key string, lease time.Duration) (*Job, error) {
	keys := []string{s.dueKey(), s.jobsKey(), s.leaseKey()}
	until := s.now().Add(lease).UnixMilli()
	raw, err := claimScript.Run(ctx, s.client, keys, key, until).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scheduler: claim %s: %w", key, err)
	}
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("scheduler: decode job %s: %w", key, err)
	}
	return &job, nil
}

// requeueScript returns expired leases to the due set. Jobs cancelled or
// rescheduled in the meantime are left alone.
var requeueScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, k in ipairs(expired) do
	redis.call('ZREM', KEYS[2], k)
	if redis.call('HEXISTS', KEYS[3], k) == 1 and not redis.call('ZSCORE', KEYS[1], k) then
		redis.call('ZADD', KEYS[1], ARGV[1], k)
	end
end
return #expired
`)

// requeueExpired puts jobs whose lease ran out back on the due set and
// returns how many leases expired.
func (s *RedisScheduler) requeueExpired(ctx context.Context, now time.Time) (int64, error) {
	keys := []string{s.dueKey(), s.leaseKey(), s.jobsKey()}
	n, err := requeueScript.Run(ctx, s.client, keys, now.UnixMilli()).Int64()
	if err != nil {
		return 0, fmt.Errorf("scheduler: requeue expired leases: %w", err)
	}
	return n, nil
}

// completeScript releases the lease and drops the job record unless the
// key was rescheduled while the job ran.
var completeScript = redis.NewScript(`
redis.call('ZREM', KEYS[4], ARGV[1])
if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
	return 0
end
redis.call('HDEL', KEYS[2], ARGV[1])
if ARGV[2] ~= '' then
	redis.call('SREM', KEYS[3], ARGV[1])
end
return 1
`)

func (s *RedisScheduler) complete(ctx context.Context, job *Job) error {
	keys := []string{s.dueKey(), s.jobsKey(), s.tagKey(job.Tag), s.leaseKey()}
	if err := completeScript.Run(ctx, s.client, keys, job.Key, job.Tag).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("scheduler: complete %s: %w", job.Key, err)
	}
	return nil
}

// retryScript puts a failed job back on the due set. A job cancelled while
// it ran stays cancelled; one rescheduled while it ran keeps the new
// schedule.
var retryScript = redis.NewScript(`
redis.call('ZREM', KEYS[4], ARGV[1])
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 0 then
	return 0
end
if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[1])
if ARGV[4] ~= '' then
	redis.call('SADD', KEYS[3], ARGV[1])
end
return 1
`)

// retry reports whether the job was put back.
func (s *RedisScheduler) retry(ctx context.Context, job *Job, delay time.Duration) (bool, error) {
	next := *job
	next.Attempts++
	next.FireAt = s.now().Add(delay).UnixMilli()
	data, err := json.Marshal(&next)
	if err != nil {
		return false, fmt.Errorf("scheduler: encode job: %w", err)
	}
	keys := []string{s.dueKey(), s.jobsKey(), s.tagKey(job.Tag), s.leaseKey()}
	n, err := retryScript.Run(ctx, s.client, keys, job.Key, data, next.FireAt, job.Tag).Int()
	if err != nil {
		return false, fmt.Errorf("scheduler: retry %s: %w", job.Key, err)
	}
	if n == 1 {
		*job = next
	}
	return n == 1, nil
}
