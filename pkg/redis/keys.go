package redis

import "fmt"

// 全局前缀，用于区分不同环境或应用
const (
	GlobalPrefix = "cmms"
)

// 模块前缀
const (
	AssetModule = "asset"
	PMModule    = "pm"
	// 其他模块...
)

// 资产相关键模板
const (
	// 单个资产缓存键模板
	AssetKeyTpl = "%s:%s:%s:id:%d" // {global}:{module}:{version}:id:{asset_id}

	// 资产列表缓存键模板
	AssetListKeyTpl = "%s:%s:%s:list:%s" // {global}:{module}:{version}:list:{query_hash}
)

// PM 相关键模板
const (
	// PM 生成任务跨实例锁
	PMRunLockKeyTpl = "%s:%s:%s:run:lock" // {global}:{module}:{version}:run:lock
)

// Pub/Sub 通道名称
const (
	// PMNotificationsChannel 定义PM生成结果通知的 Redis Pub/Sub 通道名称
	PMNotificationsChannel = "cmms:pm:notifications"
)

// KeyBuilder 提供构建Redis键的方法
type KeyBuilder struct {
	globalPrefix string
	version      string
}

// NewKeyBuilder 创建一个新的KeyBuilder实例
func NewKeyBuilder(globalPrefix string, version string) *KeyBuilder {
	if globalPrefix == "" {
		globalPrefix = GlobalPrefix
	}
	if version == "" {
		version = "v1" // 默认版本
	}
	return &KeyBuilder{globalPrefix: globalPrefix, version: version}
}

// AssetKey 构建单个资产缓存键
func (kb *KeyBuilder) AssetKey(id int64) string {
	return fmt.Sprintf(AssetKeyTpl, kb.globalPrefix, AssetModule, kb.version, id)
}

// AssetListKey 构建资产列表缓存键
func (kb *KeyBuilder) AssetListKey(queryHash string) string {
	return fmt.Sprintf(AssetListKeyTpl, kb.globalPrefix, AssetModule, kb.version, queryHash)
}

// PMRunLockKey 构建PM生成任务的跨实例锁键
func (kb *KeyBuilder) PMRunLockKey() string {
	return fmt.Sprintf(PMRunLockKeyTpl, kb.globalPrefix, PMModule, kb.version)
}

// AssetListPattern 生成用于扫描资产列表缓存的模式
func (kb *KeyBuilder) AssetListPattern() string {
	// 模式应为 {global}:{module}:{version}:list:*
	return fmt.Sprintf("%s:%s:%s:list:*", kb.globalPrefix, AssetModule, kb.version)
}
