package redis

import (
	"strings"
	"time"

	"github.com/go-redis/redis"
)

type _client struct {
	cli *redis.Client
}

var clientMap map[string]_client

func init() {
	clientMap = make(map[string]_client)
	Init("default", "127.0.0.1:6379", "")
}

func Init(dbName string, host string, password string) error {
	hostSlice := strings.Split(host, ",")
	client := redis.NewClient(&redis.Options{
		Addr:     hostSlice[0],
		Password: password,
		DB:       0,
	})
	_, err := client.Ping().Result()
	if err != nil {
		return err
	}
	clientMap[dbName] = _client{cli: client}
	return nil
}

type Handler struct {
	client *redis.Client
}

func NewRedisHandler(db string) *Handler {
	return &Handler{client: Client(db)}
}

func Client(db string) *redis.Client {
	return clientMap[db].cli
}

// ScanKeys 使用 Redis SCAN 命令迭代查找匹配的键，避免阻塞服务器。
func (rh *Handler) ScanKeys(pattern string) ([]string, error) {
	var cursor uint64
	var keys []string
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = rh.client.Scan(cursor, pattern, 10).Result()
		if err != nil {
			return nil, err
		}

		keys = append(keys, currentKeys...)

		// 如果游标返回 0，表示迭代完成
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

func (rh *Handler) Get(key string) string {
	val, err := rh.client.Get(key).Result()
	if err != nil {
		return ""
	}
	return val
}

func (rh *Handler) SetWithExpireTime(key string, value string, expiry time.Duration) {
	_ = rh.client.Set(key, value, expiry).Err()
}

func (rh *Handler) Delete(key string) {
	_ = rh.client.Del(key).Err()
}

func (rh *Handler) AcquireLock(key string, value string, expiry time.Duration) (isSuccess bool, err error) {
	isSuccess, err = rh.client.SetNX(key, value, expiry).Result()
	if err != nil {
		return
	}
	return
}

func (rh *Handler) Pub(channel string, message string) (err error) {
	err = rh.client.Publish(channel, message).Err()
	if err != nil {
		return
	}
	return
}

func (rh *Handler) Subscribe(channel string) (ret *redis.PubSub) {
	ret = rh.client.Subscribe(channel)
	return
}
