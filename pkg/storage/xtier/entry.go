package xtier

import (
	"time"

	"github.com/goccy/go-json"
)

// StoreKeyPrefix 是持久层条目的保留命名空间前缀。
// 所有持久化 key 均以此前缀存储，使批量枚举和清扫不会触碰
// 同一存储介质中的无关数据。
const StoreKeyPrefix = "decotv-cache:"

// Entry 是持久层的条目格式。
// 一经写入不可变：新的 Set 整体覆盖旧条目。
type Entry struct {
	// Data 是不透明的缓存负载。
	Data json.RawMessage `json:"data"`

	// Timestamp 是写入时刻的毫秒级 Unix 时间戳。
	Timestamp int64 `json:"timestamp"`

	// TTL 是条目生存时间（秒）。
	TTL int64 `json:"ttl"`
}

// NewEntry 以当前时刻构造条目。
// ttl 按秒截断存储；ttl <= 0 的条目在任何后续读取中都视为已过期。
func NewEntry(value []byte, ttl time.Duration) Entry {
	return Entry{
		Data:      value,
		Timestamp: time.Now().UnixMilli(),
		TTL:       int64(ttl / time.Second),
	}
}

// Expired 判定条目在 now 时刻是否已过期：now - storedAt > ttl。
// 过期判定是惰性的，统一由读取路径和清扫路径调用。
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp > e.TTL*1000
}

// StoredAt 返回条目写入时刻。
func (e Entry) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// TTLDuration 返回条目 TTL 的 time.Duration 表示。
func (e Entry) TTLDuration() time.Duration {
	return time.Duration(e.TTL) * time.Second
}

// encodeEntry 将条目编码为持久化 JSON。
func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

// decodeEntry 解码持久化 JSON。
// 解码失败表示条目损坏，调用方应删除该条目并按 miss 处理。
func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
