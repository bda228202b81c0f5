package xtier

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// FuzzDecodeEntry 验证任意输入都不会使解码崩溃：
// 要么得到条目，要么得到错误，二者必居其一。
func FuzzDecodeEntry(f *testing.F) {
	f.Add([]byte(`{"data":"v","timestamp":1700000000000,"ttl":7200}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{not json`))
	f.Add([]byte(``))

	f.Fuzz(func(t *testing.T, data []byte) {
		e, err := decodeEntry(data)
		if err != nil {
			return
		}
		// 解码成功的条目必须能重新编码
		if _, rerr := encodeEntry(e); rerr != nil {
			t.Fatalf("re-encode of decoded entry failed: %v", rerr)
		}
	})
}

// FuzzEntryRoundTrip 验证合法 JSON 负载的编解码往返不丢数据。
func FuzzEntryRoundTrip(f *testing.F) {
	f.Add(`"string"`, int64(3600))
	f.Add(`{"nested":{"a":[1,2,3]}}`, int64(1))
	f.Add(`null`, int64(7200))

	f.Fuzz(func(t *testing.T, payload string, ttlSec int64) {
		if !json.Valid([]byte(payload)) {
			t.Skip()
		}
		if ttlSec < 0 {
			ttlSec = -ttlSec
		}
		orig := NewEntry([]byte(payload), time.Duration(ttlSec)*time.Second)

		raw, err := encodeEntry(orig)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		got, err := decodeEntry(raw)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got.Timestamp != orig.Timestamp || got.TTL != orig.TTL {
			t.Fatalf("metadata mismatch: got %+v, want %+v", got, orig)
		}
	})
}
