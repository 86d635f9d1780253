package service

import (
	"encoding/json"
	"fmt"
	"time"

	"cmms-ng/pkg/redis"
)

// 缓存过期时间常量
const (
	// AssetListExpiration 资产列表缓存过期时间
	AssetListExpiration = 5 * time.Minute

	// AssetExpiration 单个资产缓存过期时间
	AssetExpiration = 30 * time.Minute
)

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits    int64 `json:"hits"`    // 缓存命中次数
	Misses  int64 `json:"misses"`  // 缓存未命中次数
	Sets    int64 `json:"sets"`    // 缓存设置次数
	Deletes int64 `json:"deletes"` // 缓存删除次数
}

// AssetListResponse 资产列表响应，整体作为一个缓存条目
type AssetListResponse struct {
	Items []AssetListItemDTO `json:"items"`
	Total int64              `json:"total"`
}

// AssetCache 资产缓存服务。列表按查询条件缓存，单个资产按ID缓存；
// PM生成任务回写资产后负责失效对应条目。
type AssetCache struct {
	handler    RedisHandlerInterface
	keyBuilder *redis.KeyBuilder
	stats      CacheStats
}

// NewAssetCache 创建资产缓存服务
func NewAssetCache(handler RedisHandlerInterface, keyBuilder *redis.KeyBuilder) *AssetCache {
	return &AssetCache{
		handler:    handler,
		keyBuilder: keyBuilder,
	}
}

// SetAssetList 缓存资产列表
func (c *AssetCache) SetAssetList(queryHash string, response *AssetListResponse) error {
	key := c.keyBuilder.AssetListKey(queryHash)
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	c.handler.SetWithExpireTime(key, string(data), AssetListExpiration)

	c.stats.Sets++
	return nil
}

// GetAssetList 获取缓存的资产列表
func (c *AssetCache) GetAssetList(queryHash string) (*AssetListResponse, error) {
	key := c.keyBuilder.AssetListKey(queryHash)
	data := c.handler.Get(key)
	if data == "" {
		c.stats.Misses++
		return nil, fmt.Errorf("cache miss")
	}

	var response AssetListResponse
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		return nil, err
	}

	c.stats.Hits++
	return &response, nil
}

// SetAsset 缓存单个资产
func (c *AssetCache) SetAsset(id int64, asset *AssetDetailDTO) error {
	key := c.keyBuilder.AssetKey(id)
	data, err := json.Marshal(asset)
	if err != nil {
		return err
	}
	c.handler.SetWithExpireTime(key, string(data), AssetExpiration)

	c.stats.Sets++
	return nil
}

// GetAsset 获取缓存的单个资产
func (c *AssetCache) GetAsset(id int64) (*AssetDetailDTO, error) {
	key := c.keyBuilder.AssetKey(id)
	data := c.handler.Get(key)
	if data == "" {
		c.stats.Misses++
		return nil, fmt.Errorf("cache miss")
	}

	var asset AssetDetailDTO
	if err := json.Unmarshal([]byte(data), &asset); err != nil {
		return nil, err
	}

	c.stats.Hits++
	return &asset, nil
}

// InvalidateAsset 使单个资产缓存失效
func (c *AssetCache) InvalidateAsset(id int64) {
	c.handler.Delete(c.keyBuilder.AssetKey(id))
	c.stats.Deletes++
}

// InvalidateAssetLists 使所有资产列表缓存失效。
// 使用 SCAN 命令按模式查键，避免 KEYS 阻塞服务器。
func (c *AssetCache) InvalidateAssetLists() error {
	pattern := c.keyBuilder.AssetListPattern()
	keys, err := c.handler.ScanKeys(pattern)
	if err != nil {
		return fmt.Errorf("error scanning asset list keys with pattern %s: %w", pattern, err)
	}

	for _, key := range keys {
		c.handler.Delete(key)
		c.stats.Deletes++
	}
	return nil
}

// Stats 返回缓存统计信息
func (c *AssetCache) Stats() CacheStats {
	return c.stats
}
