package global

import (
	"os"
	"strconv"

	"MProject/tools/ids"

	redis "MProject/service/storage/redis"
)

const (
	BusKindRedis = "redis"
	BusKindNats  = "nats"
)

// AppConfig is the per-node configuration. Every gateway node is identical;
// only GatewayID and the listen port differ between instances.
type AppConfig struct {
	GatewayID string
	Port      int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BusKind     string // redis | nats
	NatsServers string // comma separated, BusKind=nats only

	NodeID int64 // snowflake node part
}

var Config = AppConfig{
	GatewayID: "match_gw-1",
	Port:      8080,
	RedisAddr: "127.0.0.1:6379",
	BusKind:   BusKindRedis,
	NodeID:    1,
}

// LoadEnv overlays environment variables onto the defaults.
func LoadEnv() {
	if v := os.Getenv("GATEWAY_ID"); v != "" {
		Config.GatewayID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			Config.Port = n
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		Config.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		Config.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			Config.RedisDB = n
		}
	}
	if v := os.Getenv("BUS_KIND"); v != "" {
		Config.BusKind = v
	}
	if v := os.Getenv("NATS_SERVERS"); v != "" {
		Config.NatsServers = v
	}
	if v := os.Getenv("NODE_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			Config.NodeID = n
		}
	}
}

func ConfigAll() error {
	LoadEnv()
	ConfigIds()
	return ConfigRedis()
}

func ConfigIds() {
	ids.SetNodeID(Config.NodeID)
}

func ConfigRedis() error {
	return redis.InitRedis(redis.Config{
		Addr:     Config.RedisAddr,
		Password: Config.RedisPassword,
		DB:       Config.RedisDB,
	})
}
