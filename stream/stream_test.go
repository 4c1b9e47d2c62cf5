package stream

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/queue"
)

func TestFromSlice(t *testing.T) {
	it := FromSlice([]string{"a", "b"})
	ctx := context.Background()

	v, ok, err := it.Next(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok, _ = it.Next(ctx)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok, _ = it.Next(ctx)
	assert.False(t, ok)
	assert.NoError(t, it.Close())
}

func TestRange(t *testing.T) {
	var got []int
	err := Drain(context.Background(), Range(3, 7), func(_ context.Context, v int) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 6}, got)
}

func TestFromFunc_StopsAfterExhaustion(t *testing.T) {
	calls := 0
	it := FromFunc(func(context.Context) (int, bool, error) {
		calls++
		return 0, false, nil
	})
	for i := 0; i < 3; i++ {
		_, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, calls)
}

func TestSource_ProducesThenSentinel(t *testing.T) {
	out := queue.NewMemory[int]("out")
	src := NewSource("numbers", FromSlice([]int{1, 2}), out)
	assert.Equal(t, graph.KindSource, src.Kind())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		done, err := src.Step(ctx)
		require.NoError(t, err)
		assert.False(t, done)
	}
	done, err := src.Step(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = src.Step(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 3, out.Len(), "exactly one sentinel")
	assert.Equal(t, int64(2), src.Produced())

	values, err := Collect(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, values)
}

func TestSource_IteratorError(t *testing.T) {
	out := queue.NewMemory[int]("out")
	boom := fmt.Errorf("read failed")
	src := NewSource("broken", FromFunc(func(context.Context) (int, bool, error) {
		return 0, false, boom
	}), out)

	done, err := src.Step(context.Background())
	assert.False(t, done)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
	assert.ErrorIs(t, err, boom)
	assert.True(t, out.Empty())
}

type failingClose struct{ Iterator[int] }

func (failingClose) Close() error { return fmt.Errorf("close failed") }

func TestSource_CloseErrorStillShutsDown(t *testing.T) {
	out := queue.NewMemory[int]("out")
	src := NewSource("closer", failingClose{FromSlice[int](nil)}, out)

	done, err := src.Step(context.Background())
	assert.True(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")

	item, ok := out.TryGet()
	require.True(t, ok)
	assert.True(t, item.IsSentinel())
}

func TestSink_ConsumesUntilSentinel(t *testing.T) {
	in := queue.NewMemory[string]("in")
	var got []string
	sink := NewSink("collector", in, func(_ context.Context, v string) error {
		got = append(got, v)
		return nil
	})
	assert.Equal(t, graph.KindSink, sink.Kind())

	ctx := context.Background()
	done, err := sink.Step(ctx)
	require.NoError(t, err)
	assert.False(t, done, "empty input is idle")

	in.Put(queue.Value("x"))
	in.Put(queue.Value("y"))
	in.Put(queue.Sentinel[string]())
	in.Put(queue.Value("after"))

	steps := 0
	for !done {
		done, err = sink.Step(ctx)
		require.NoError(t, err)
		steps++
	}
	assert.Equal(t, 3, steps)
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, int64(2), sink.Consumed())

	done, _ = sink.Step(ctx)
	assert.True(t, done)
	assert.Equal(t, 1, in.Len(), "items after the sentinel are left alone")
}

func TestSink_CallbackError(t *testing.T) {
	in := queue.NewMemory[int]("in")
	boom := fmt.Errorf("write failed")
	sink := NewSink("failing", in, func(context.Context, int) error { return boom })

	in.Put(queue.Value(1))
	done, err := sink.Step(context.Background())
	assert.False(t, done)
	assert.ErrorIs(t, err, boom)
}

func TestSink_NilCallbackDiscards(t *testing.T) {
	in := queue.NewMemory[int]("in")
	sink := NewSink[int]("discard", in, nil)
	in.Put(queue.Value(1))
	in.Put(queue.Sentinel[int]())

	for i := 0; i < 2; i++ {
		_, err := sink.Step(context.Background())
		require.NoError(t, err)
	}
	assert.True(t, in.Empty())
}

func TestSink_ReadyAndEndpoints(t *testing.T) {
	in := queue.NewMemory[int]("in")
	sink := NewSink[int]("s", in, nil)

	inputs, outputs := sink.Endpoints()
	assert.Equal(t, []string{in.ID()}, inputs)
	assert.Empty(t, outputs)

	chans, ok := sink.Ready()
	require.True(t, ok)
	in.Put(queue.Value(1))
	select {
	case <-chans[0]:
	case <-time.After(time.Second):
		t.Fatal("ready channel not closed")
	}
}

func TestCollect_BlocksUntilSentinel(t *testing.T) {
	q := queue.NewMemory[int]("q")
	go func() {
		for i := 0; i < 5; i++ {
			q.Put(queue.Value(i))
			time.Sleep(time.Millisecond)
		}
		q.Put(queue.Sentinel[int]())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	values, err := Collect(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, values)
	require.NoError(t, q.Join(ctx))
}

func TestCollect_ContextCancelled(t *testing.T) {
	q := queue.NewMemory[int]("q")
	q.Put(queue.Value(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	values, err := Collect(ctx, q)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []int{1}, values)
}
