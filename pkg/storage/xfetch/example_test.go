package xfetch_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wya0/DecoTV/pkg/storage/xfetch"
	"github.com/wya0/DecoTV/pkg/storage/xtier"
	"github.com/wya0/DecoTV/pkg/util/xkey"
)

type movieList struct {
	Titles []string `json:"titles"`
}

func ExampleNew() {
	cache, err := xtier.New()
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	coord, err := xfetch.New(cache, "douban", func(ctx context.Context) (movieList, error) {
		// 真实场景里这里是一次上游请求
		return movieList{Titles: []string{"Dune", "Arrival"}}, nil
	}, xfetch.WithDebounce[movieList](10*time.Millisecond))
	if err != nil {
		panic(err)
	}
	defer coord.Close()

	ctx := context.Background()
	if err := coord.Observe(ctx, xkey.Params{"type": "movie", "tag": "hot"}); err != nil {
		panic(err)
	}

	for coord.State() != xfetch.StateResolved {
		time.Sleep(5 * time.Millisecond)
	}
	fmt.Println(coord.Current().Data.Titles)
	// Output: [Dune Arrival]
}

func ExampleCoordinator_Refresh() {
	cache, _ := xtier.New()
	defer cache.Close()

	n := 0
	coord, _ := xfetch.New(cache, "counter", func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}, xfetch.WithDebounce[int](time.Millisecond))
	defer coord.Close()

	ctx := context.Background()
	_ = coord.Observe(ctx, xkey.Params{"id": "1"})
	for coord.State() != xfetch.StateResolved {
		time.Sleep(time.Millisecond)
	}

	// 绕过缓存读取，强制重新取数
	_ = coord.Refresh(ctx)
	for coord.Current().Data != 2 {
		time.Sleep(time.Millisecond)
	}
	fmt.Println(coord.Current().Data)
	// Output: 2
}
