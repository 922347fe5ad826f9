package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore keeps pending events in a single sorted set, scored by due
// time in unix milliseconds. ZRANGEBYSCORE + ZREM run inside one Lua
// script, so two workers draining concurrently can never pop the same
// member twice.
type RedisStore struct {
	client *redis.Client
	key    string
}

// drainScript atomically pops up to ARGV[2] members due at or before
// ARGV[1], earliest first.
var drainScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
if #due > 0 then
  redis.call('ZREM', KEYS[1], unpack(due))
end
return due
`)

func NewRedisStore(addr, password string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping: %v", ErrStoreUnavailable, err)
	}

	return &RedisStore{client: client, key: key}, nil
}

func (r *RedisStore) Schedule(ctx context.Context, ev Event, delay time.Duration) error {
	if ev.Nonce == "" {
		ev.Nonce = uuid.NewString()
	}
	member, err := ev.Encode()
	if err != nil {
		return err
	}

	score := float64(time.Now().Add(delay).UnixMilli())
	if err := r.client.ZAdd(ctx, r.key, &redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("%w: zadd: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) DrainDue(ctx context.Context, limit int) ([]Event, error) {
	now := time.Now().UnixMilli()
	raw, err := drainScript.Run(ctx, r.client, []string{r.key}, now, limit).StringSlice()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: drain: %v", ErrStoreUnavailable, err)
	}

	events := make([]Event, 0, len(raw))
	for _, member := range raw {
		ev, err := DecodeEvent(member)
		if err != nil {
			// A corrupt member is already removed from the set; skip it
			// rather than poisoning the whole drain.
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *RedisStore) CancelRoom(ctx context.Context, roomID string) error {
	pattern := cancelMatchPattern(roomID)

	var cursor uint64
	for {
		members, next, err := r.client.ZScan(ctx, r.key, cursor, pattern, 200).Result()
		if err != nil {
			return fmt.Errorf("%w: zscan: %v", ErrStoreUnavailable, err)
		}
		// ZSCAN returns member, score pairs; keep only the members.
		toRemove := make([]interface{}, 0, len(members)/2)
		for i := 0; i < len(members); i += 2 {
			toRemove = append(toRemove, members[i])
		}
		if len(toRemove) > 0 {
			if err := r.client.ZRem(ctx, r.key, toRemove...).Err(); err != nil {
				return fmt.Errorf("%w: zrem: %v", ErrStoreUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// cancelMatchPattern builds the ZSCAN MATCH glob selecting one room's
// members. Events are JSON with a fixed field order, so the id appears
// as a literal substring; it is embedded in its JSON form with glob
// metacharacters escaped, or an id like "*" would widen the match to
// every room's events.
func cancelMatchPattern(roomID string) string {
	encoded, _ := json.Marshal(roomID)

	var b strings.Builder
	b.WriteString(`*"room_id":`)
	for _, c := range encoded {
		switch c {
		case '*', '?', '[', ']', '^', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('*')
	return b.String()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
