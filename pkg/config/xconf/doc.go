// Package xconf 提供缓存核心的配置加载。
//
// 基于 koanf 实现，支持 YAML 与 JSON（按扩展名检测），
// 并通过 fsnotify 支持配置文件的变更监视与自动重载。
//
// 典型用法是直接加载类型化的缓存配置：
//
//	cfg, err := xconf.Load("/etc/decotv/cache.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// cfg.Fast.Capacity, cfg.Durable.Backend, cfg.Fetch.TTL() ...
//
// 配置文件结构（缺失字段取默认值）：
//
//	fast:
//	  enabled: true
//	  capacity: 100
//	durable:
//	  enabled: true
//	  backend: badger        # badger | file | memory
//	  dir: /var/lib/decotv
//	  quota_bytes: 5242880   # file 后端配额
//	  sweep: "@every 10m"
//	fetch:
//	  ttl_seconds: 7200
//	  debounce_ms: 100
//	  cache_enabled: true
//	  fetch_on_create: true
//
// 需要访问任意键时使用底层实例：
//
//	f, _ := xconf.New("/etc/decotv/cache.yaml")
//	dir := f.Koanf().String("durable.dir")
//
// [Watch] 可监视文件变更并自动 Reload，变更事件带防抖。
package xconf
