package match

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis key layout. One list plus two hashes, shared by every gateway node,
// reconstructed from empty on a cold start.
const (
	keyWaitingQueue = "waiting_queue"
	keyPartnerMap   = "partner_map"
	keyRoomMap      = "room_map"
)

// Enqueue must not leave a second copy of a re-joining session in the list,
// and LREM+RPUSH from two nodes can interleave, so both run in one script.
var luaEnqueue = redis.NewScript(`
redis.call("LREM", KEYS[1], 0, ARGV[1])
redis.call("RPUSH", KEYS[1], ARGV[1])
return redis.call("LLEN", KEYS[1])
`)

// Clearing a pairing touches two hash fields that must fall together; a
// concurrent disconnect of the partner must never observe a half-cleared
// pair. Returns the former partner, nil when sid was unpaired.
var luaClearPartners = redis.NewScript(`
local partner = redis.call("HGET", KEYS[1], ARGV[1])
if partner then
  redis.call("HDEL", KEYS[1], partner)
end
redis.call("HDEL", KEYS[1], ARGV[1])
return partner
`)

var luaClearRoom = redis.NewScript(`
local room = redis.call("HGET", KEYS[1], ARGV[1])
redis.call("HDEL", KEYS[1], ARGV[1])
return room
`)

// RedisStore is the production Store, one Redis instance shared by all
// gateway nodes.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Enqueue(ctx context.Context, sid string) error {
	if err := luaEnqueue.Run(ctx, s.rdb, []string{keyWaitingQueue}, sid).Err(); err != nil {
		return errors.Wrap(err, "enqueue waiting")
	}
	return nil
}

func (s *RedisStore) DequeueFront(ctx context.Context) (string, error) {
	v, err := s.rdb.LPop(ctx, keyWaitingQueue).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "lpop waiting")
	}
	return v, nil
}

func (s *RedisStore) RemoveWaiting(ctx context.Context, sid string) error {
	if err := s.rdb.LRem(ctx, keyWaitingQueue, 0, sid).Err(); err != nil {
		return errors.Wrap(err, "lrem waiting")
	}
	return nil
}

func (s *RedisStore) WaitingLen(ctx context.Context) (int64, error) {
	n, err := s.rdb.LLen(ctx, keyWaitingQueue).Result()
	if err != nil {
		return 0, errors.Wrap(err, "llen waiting")
	}
	return n, nil
}

func (s *RedisStore) SetPartners(ctx context.Context, a, b string) error {
	if err := s.rdb.HSet(ctx, keyPartnerMap, a, b, b, a).Err(); err != nil {
		return errors.Wrap(err, "hset partners")
	}
	return nil
}

func (s *RedisStore) Partner(ctx context.Context, sid string) (string, error) {
	v, err := s.rdb.HGet(ctx, keyPartnerMap, sid).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "hget partner")
	}
	return v, nil
}

func (s *RedisStore) ClearPartners(ctx context.Context, sid string) (string, error) {
	v, err := luaClearPartners.Run(ctx, s.rdb, []string{keyPartnerMap}, sid).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "clear partners")
	}
	partner, _ := v.(string)
	return partner, nil
}

func (s *RedisStore) SetRoom(ctx context.Context, sid, room string) error {
	if err := s.rdb.HSet(ctx, keyRoomMap, sid, room).Err(); err != nil {
		return errors.Wrap(err, "hset room")
	}
	return nil
}

func (s *RedisStore) Room(ctx context.Context, sid string) (string, error) {
	v, err := s.rdb.HGet(ctx, keyRoomMap, sid).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "hget room")
	}
	return v, nil
}

func (s *RedisStore) ClearRoom(ctx context.Context, sid string) (string, error) {
	v, err := luaClearRoom.Run(ctx, s.rdb, []string{keyRoomMap}, sid).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "clear room")
	}
	room, _ := v.(string)
	return room, nil
}
