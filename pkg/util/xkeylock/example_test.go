package xkeylock_test

import (
	"context"
	"fmt"

	"github.com/wya0/DecoTV/pkg/util/xkeylock"
)

func Example() {
	locker, err := xkeylock.New()
	if err != nil {
		panic(err)
	}

	unlock, err := locker.Acquire(context.Background(), "category-kind=hot&type=movie")
	if err != nil {
		panic(err)
	}

	// 临界区：同一 key 的并发回填在此串行
	fmt.Println("holding key lock")

	if err := unlock(); err != nil {
		panic(err)
	}
	fmt.Println("released")

	// Output:
	// holding key lock
	// released
}
