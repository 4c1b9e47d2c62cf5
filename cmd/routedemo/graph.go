package main

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/queue"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/stream"
)

// demo is the residue graph: source -> split -> merge -> sink.
type demo struct {
	graph *graph.Graph
	split *route.Split[int, int]
	merge *route.Merge[int]

	sum   atomic.Int64
	count atomic.Int64
}

func buildDemo(cfg DemoConfig, opts ...route.Option) (*demo, error) {
	numbers := queue.NewMemory[int]("numbers")
	merged := queue.NewMemory[int]("merged")

	routes := make(route.Routes[int, int], cfg.Buckets)
	buckets := make([]queue.Queue[int], 0, cfg.Buckets)
	for r := 0; r < cfg.Buckets; r++ {
		q := queue.NewMemory[int](fmt.Sprintf("residue-%d", r))
		buckets = append(buckets, q)
		if !slices.Contains(cfg.Unrouted, r) {
			routes[r] = q
		}
	}

	modulus := cfg.Buckets
	residue := func(_ context.Context, v int) (int, error) {
		return v % modulus, nil
	}

	split, err := route.NewSplit("residue", residue, numbers, routes, opts...)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	merge, err := route.NewMerge("merge", buckets, merged, opts...)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	d := &demo{split: split, merge: merge}
	sink := stream.NewSink("sum", merged, func(_ context.Context, v int) error {
		d.sum.Add(int64(v))
		d.count.Add(1)
		return nil
	})

	d.graph, err = graph.New(
		stream.NewSource("numbers", stream.Range(1, cfg.Count+1), numbers),
		split,
		merge,
		sink,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}
