package route

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/queue"
)

// --- test helpers ---

var quiet = WithLogger(logger.NewNop())

func isEven(_ context.Context, v int) (bool, error) { return v%2 == 0, nil }

func fill(q queue.Queue[int], values ...int) {
	for _, v := range values {
		q.Put(queue.Value(v))
	}
}

func end(q queue.Queue[int]) { q.Put(queue.Sentinel[int]()) }

// drain removes everything from q. Values are returned in order and a
// sentinel is reported as the count of sentinels seen.
func drain(q *queue.Memory[int]) (values []int, sentinels int) {
	for {
		item, ok := q.TryGet()
		if !ok {
			return values, sentinels
		}
		q.Done()
		if item.IsSentinel() {
			sentinels++
			continue
		}
		values = append(values, item.Value())
	}
}

// stepUntil steps node until it shuts down or limit steps have run.
func stepUntil(t *testing.T, node graph.Node, limit int) int {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= limit; i++ {
		done, err := node.Step(ctx)
		require.NoError(t, err)
		if done {
			return i
		}
	}
	return -1
}

func newParity(t *testing.T) (*Split[int, bool], *queue.Memory[int], *queue.Memory[int], *queue.Memory[int]) {
	t.Helper()
	in := queue.NewMemory[int]("in")
	evens := queue.NewMemory[int]("evens")
	odds := queue.NewMemory[int]("odds")
	split, err := NewSplit("parity", isEven, in, Routes[bool, int]{true: evens, false: odds}, quiet)
	require.NoError(t, err)
	return split, in, evens, odds
}

// --- Split ---

func TestSplit_EvenOdd(t *testing.T) {
	split, in, evens, odds := newParity(t)
	fill(in, 1, 2, 3, 4, 5, 6)
	end(in)

	steps := stepUntil(t, split, 20)
	assert.Equal(t, 7, steps, "one item per step, sentinel last")
	assert.True(t, split.ShutDown())
	assert.Equal(t, StateShutDown, split.State())

	evenValues, evenSentinels := drain(evens)
	oddValues, oddSentinels := drain(odds)
	assert.Equal(t, []int{2, 4, 6}, evenValues)
	assert.Equal(t, []int{1, 3, 5}, oddValues)
	assert.Equal(t, 1, evenSentinels)
	assert.Equal(t, 1, oddSentinels)
	assert.True(t, in.Empty())

	assert.Equal(t, Stats{Routed: 6, SentinelsIn: 1, SentinelsOut: 2}, split.Stats())
	require.NoError(t, in.Join(context.Background()), "every input item is acknowledged")
}

func TestSplit_EmptyInputIsIdle(t *testing.T) {
	split, _, evens, odds := newParity(t)

	done, err := split.Step(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
	assert.True(t, evens.Empty())
	assert.True(t, odds.Empty())
	assert.Equal(t, StateRunning, split.State())
}

func TestSplit_StepAfterShutdownIsInert(t *testing.T) {
	split, in, evens, odds := newParity(t)
	end(in)
	require.Equal(t, 1, stepUntil(t, split, 1))

	fill(in, 8)
	for i := 0; i < 3; i++ {
		done, err := split.Step(context.Background())
		require.NoError(t, err)
		assert.True(t, done)
	}

	assert.Equal(t, 1, in.Len(), "input is not touched after shutdown")
	_, evenSentinels := drain(evens)
	_, oddSentinels := drain(odds)
	assert.Equal(t, 1, evenSentinels)
	assert.Equal(t, 1, oddSentinels)
}

func TestSplit_UnroutableHalts(t *testing.T) {
	in := queue.NewMemory[int]("in")
	evens := queue.NewMemory[int]("evens")
	split, err := NewSplit("evens-only", isEven, in, Routes[bool, int]{true: evens}, quiet)
	require.NoError(t, err)

	fill(in, 2, 3, 4)
	end(in)

	done, err := split.Step(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	done, err = split.Step(context.Background())
	assert.False(t, done)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnroutable))
	assert.True(t, errors.IsFatal(err))
	assert.Contains(t, err.Error(), "no route for key false")
	assert.Equal(t, StateHalted, split.State())
	assert.False(t, split.ShutDown())

	for i := 0; i < 3; i++ {
		done, again := split.Step(context.Background())
		assert.False(t, done)
		assert.Same(t, err, again, "halted split keeps returning the same error")
	}
	assert.Equal(t, 2, in.Len(), "halted split does not consume input")

	values, sentinels := drain(evens)
	assert.Equal(t, []int{2}, values)
	assert.Zero(t, sentinels)
}

func TestSplit_PredicateErrorKeepsRunning(t *testing.T) {
	in := queue.NewMemory[int]("in")
	out := queue.NewMemory[int]("out")
	boom := fmt.Errorf("cannot classify")
	predicate := func(_ context.Context, v int) (string, error) {
		if v < 0 {
			return "", boom
		}
		return "all", nil
	}
	split, err := NewSplit("sign", predicate, in, Routes[string, int]{"all": out}, quiet)
	require.NoError(t, err)

	fill(in, -1, 5)
	end(in)

	_, err = split.Step(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePredicateFailed))
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.IsFatal(err))
	assert.Equal(t, StateRunning, split.State())

	assert.Equal(t, 2, stepUntil(t, split, 5))
	values, sentinels := drain(out)
	assert.Equal(t, []int{5}, values)
	assert.Equal(t, 1, sentinels)
}

func TestSplit_PredicateReceivesContext(t *testing.T) {
	type ctxKey struct{}
	in := queue.NewMemory[int]("in")
	out := queue.NewMemory[int]("out")
	var seen any
	predicate := func(ctx context.Context, _ int) (int, error) {
		seen = ctx.Value(ctxKey{})
		return 0, nil
	}
	split, err := NewSplit("ctx", predicate, in, Routes[int, int]{0: out}, quiet)
	require.NoError(t, err)

	fill(in, 1)
	_, err = split.Step(context.WithValue(context.Background(), ctxKey{}, "marker"))
	require.NoError(t, err)
	assert.Equal(t, "marker", seen)
}

func TestSplit_SharedQueueGetsOneSentinel(t *testing.T) {
	in := queue.NewMemory[int]("in")
	small := queue.NewMemory[int]("small")
	large := queue.NewMemory[int]("large")
	bucket := func(_ context.Context, v int) (int, error) { return v / 10, nil }
	split, err := NewSplit("buckets", bucket, in, Routes[int, int]{
		0: small,
		1: small,
		2: large,
	}, quiet)
	require.NoError(t, err)

	fill(in, 3, 15, 27)
	end(in)
	require.Equal(t, 4, stepUntil(t, split, 10))

	values, sentinels := drain(small)
	assert.Equal(t, []int{3, 15}, values)
	assert.Equal(t, 1, sentinels)
	_, sentinels = drain(large)
	assert.Equal(t, 1, sentinels)
	assert.Equal(t, int64(2), split.Stats().SentinelsOut)
}

func TestSplit_PerKeyOrder(t *testing.T) {
	split, in, evens, odds := newParity(t)
	var want []int
	for i := 0; i < 200; i++ {
		fill(in, i)
		want = append(want, i)
	}
	end(in)
	require.Equal(t, 201, stepUntil(t, split, 500))

	evenValues, _ := drain(evens)
	oddValues, _ := drain(odds)
	assert.Len(t, append(evenValues, oddValues...), len(want), "every value routed exactly once")
	for i := 1; i < len(evenValues); i++ {
		assert.Less(t, evenValues[i-1], evenValues[i])
	}
	for i := 1; i < len(oddValues); i++ {
		assert.Less(t, oddValues[i-1], oddValues[i])
	}
}

func TestNewSplit_InvalidConfig(t *testing.T) {
	in := queue.NewMemory[int]("in")
	out := queue.NewMemory[int]("out")

	tests := []struct {
		name      string
		predicate Predicate[int, bool]
		in        queue.Queue[int]
		routes    Routes[bool, int]
		message   string
	}{
		{"nil predicate", nil, in, Routes[bool, int]{true: out}, "predicate: is required"},
		{"nil input", isEven, nil, Routes[bool, int]{true: out}, "input: is required"},
		{"no routes", isEven, in, nil, "routes: at least one route is required"},
		{"nil route queue", isEven, in, Routes[bool, int]{true: nil}, "routes[true]: queue is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := NewSplit("bad", tt.predicate, tt.in, tt.routes, quiet)
			require.Error(t, err)
			assert.Nil(t, split)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewSplit_CopiesRoutes(t *testing.T) {
	in := queue.NewMemory[int]("in")
	evens := queue.NewMemory[int]("evens")
	routes := Routes[bool, int]{true: evens}
	split, err := NewSplit("copy", isEven, in, routes, quiet)
	require.NoError(t, err)

	routes[false] = queue.NewMemory[int]("late")
	fill(in, 1)
	_, err = split.Step(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnroutable))
}

func TestNewSplit_DefaultName(t *testing.T) {
	split, err := NewSplit("", isEven, queue.NewMemory[int]("in"),
		Routes[bool, int]{true: queue.NewMemory[int]("out")}, quiet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(split.Name(), "split-"))
	assert.Len(t, split.Name(), len("split-")+8)
	assert.Equal(t, graph.KindOp, split.Kind())
}

func TestSplit_Endpoints(t *testing.T) {
	split, in, evens, odds := newParity(t)
	inputs, outputs := split.Endpoints()
	assert.Equal(t, []string{in.ID()}, inputs)
	assert.ElementsMatch(t, []string{evens.ID(), odds.ID()}, outputs)

	chans, ok := split.Ready()
	require.True(t, ok)
	require.Len(t, chans, 1)

	fill(in, 1)
	select {
	case <-chans[0]:
	default:
		t.Fatal("ready channel not closed by Put")
	}
}

// --- Merge ---

func newMerge(t *testing.T, n int) (*Merge[int], []*queue.Memory[int], *queue.Memory[int]) {
	t.Helper()
	ins := make([]*queue.Memory[int], n)
	qs := make([]queue.Queue[int], n)
	for i := range ins {
		ins[i] = queue.NewMemory[int](fmt.Sprintf("in-%d", i))
		qs[i] = ins[i]
	}
	out := queue.NewMemory[int]("out")
	merge, err := NewMerge("merge", qs, out, quiet)
	require.NoError(t, err)
	return merge, ins, out
}

func TestMerge_TwoInputs(t *testing.T) {
	merge, ins, out := newMerge(t, 2)
	fill(ins[0], 1, 2)
	end(ins[0])
	fill(ins[1], 3)
	end(ins[1])

	steps := stepUntil(t, merge, 10)
	assert.Equal(t, 3, steps)
	assert.True(t, merge.ShutDown())

	values, sentinels := drain(out)
	assert.ElementsMatch(t, []int{1, 2, 3}, values)
	assert.Equal(t, 1, sentinels)
	assert.Equal(t, Stats{Routed: 3, SentinelsIn: 2, SentinelsOut: 1}, merge.Stats())
}

func TestMerge_SentinelIsLast(t *testing.T) {
	merge, ins, out := newMerge(t, 2)
	end(ins[0])
	fill(ins[1], 7, 8, 9)
	end(ins[1])

	stepUntil(t, merge, 10)

	var items []queue.Item[int]
	for {
		item, ok := out.TryGet()
		if !ok {
			break
		}
		items = append(items, item)
	}
	require.Len(t, items, 4)
	for _, item := range items[:3] {
		assert.False(t, item.IsSentinel())
	}
	assert.True(t, items[3].IsSentinel())
}

func TestMerge_FewerSentinelsKeepsRunning(t *testing.T) {
	merge, ins, out := newMerge(t, 3)
	end(ins[0])
	end(ins[2])

	assert.Equal(t, -1, stepUntil(t, merge, 5))
	assert.False(t, merge.ShutDown())
	assert.Equal(t, 1, merge.Pending())
	assert.True(t, out.Empty(), "no sentinel before every input ends")

	end(ins[1])
	assert.Equal(t, 1, stepUntil(t, merge, 1))
	_, sentinels := drain(out)
	assert.Equal(t, 1, sentinels)
}

func TestMerge_SkipsEndedInputs(t *testing.T) {
	merge, ins, out := newMerge(t, 2)
	end(ins[0])
	// Items after a sentinel are never read.
	fill(ins[0], 100)
	fill(ins[1], 1)

	_, err := merge.Step(context.Background())
	require.NoError(t, err)
	_, err = merge.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ins[0].Len())
	values, _ := drain(out)
	assert.Equal(t, []int{1}, values)

	chans, ok := merge.Ready()
	require.True(t, ok)
	assert.Len(t, chans, 1, "only open inputs are awaited")
}

func TestMerge_OneItemPerInputPerStep(t *testing.T) {
	merge, ins, out := newMerge(t, 3)
	fill(ins[0], 1, 2, 3)
	fill(ins[1], 10, 20)
	fill(ins[2], 100)

	_, err := merge.Step(context.Background())
	require.NoError(t, err)
	values, _ := drain(out)
	assert.Equal(t, []int{1, 10, 100}, values, "inputs visited in construction order")

	_, err = merge.Step(context.Background())
	require.NoError(t, err)
	values, _ = drain(out)
	assert.Equal(t, []int{2, 20}, values)
}

func TestMerge_PerSourceOrder(t *testing.T) {
	merge, ins, out := newMerge(t, 2)
	for i := 0; i < 50; i++ {
		fill(ins[0], i)
		fill(ins[1], 1000+i)
	}
	end(ins[0])
	end(ins[1])
	require.Equal(t, 51, stepUntil(t, merge, 100))

	values, _ := drain(out)
	require.Len(t, values, 100)
	var a, b []int
	for _, v := range values {
		if v < 1000 {
			a = append(a, v)
		} else {
			b = append(b, v)
		}
	}
	for i := range a {
		assert.Equal(t, i, a[i])
		assert.Equal(t, 1000+i, b[i])
	}
}

func TestMerge_StepAfterShutdownIsInert(t *testing.T) {
	merge, ins, out := newMerge(t, 1)
	end(ins[0])
	require.Equal(t, 1, stepUntil(t, merge, 1))

	fill(ins[0], 4)
	for i := 0; i < 3; i++ {
		done, err := merge.Step(context.Background())
		require.NoError(t, err)
		assert.True(t, done)
	}
	assert.Equal(t, 1, ins[0].Len())
	_, sentinels := drain(out)
	assert.Equal(t, 1, sentinels)
}

func TestMerge_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 4, 250
	merge, ins, out := newMerge(t, producers)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				fill(ins[p], p*perProducer+i)
			}
			end(ins[p])
		}(p)
	}

	ctx := context.Background()
	for {
		done, err := merge.Step(ctx)
		require.NoError(t, err)
		if done {
			break
		}
	}
	wg.Wait()

	values, sentinels := drain(out)
	assert.Equal(t, 1, sentinels)
	require.Len(t, values, producers*perProducer)
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		assert.False(t, seen[v], "value %d delivered twice", v)
		seen[v] = true
	}
}

func TestNewMerge_InvalidConfig(t *testing.T) {
	out := queue.NewMemory[int]("out")

	_, err := NewMerge[int]("m", nil, out, quiet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputs: at least one input is required")

	_, err = NewMerge("m", []queue.Queue[int]{queue.NewMemory[int]("a"), nil}, out, quiet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputs[1]: queue is required")

	_, err = NewMerge("m", []queue.Queue[int]{queue.NewMemory[int]("a")}, nil, quiet)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
	assert.Contains(t, err.Error(), "output: is required")
}

func TestNewMerge_DefaultNameAndEndpoints(t *testing.T) {
	a := queue.NewMemory[int]("a")
	b := queue.NewMemory[int]("b")
	out := queue.NewMemory[int]("out")
	merge, err := NewMerge("", []queue.Queue[int]{a, b}, out, quiet)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(merge.Name(), "merge-"))
	assert.Equal(t, graph.KindOp, merge.Kind())

	inputs, outputs := merge.Endpoints()
	assert.Equal(t, []string{a.ID(), b.ID()}, inputs)
	assert.Equal(t, []string{out.ID()}, outputs)
}

// --- wiring ---

func TestSplitThenMerge(t *testing.T) {
	split, in, evens, odds := newParity(t)
	out := queue.NewMemory[int]("out")
	merge, err := NewMerge("join", []queue.Queue[int]{evens, odds}, out, quiet)
	require.NoError(t, err)

	g, err := graph.New(split, merge)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"parity"}, {"join"}}, g.Levels())

	fill(in, 1, 2, 3, 4, 5)
	end(in)

	ctx := context.Background()
	for !merge.ShutDown() {
		_, err := split.Step(ctx)
		require.NoError(t, err)
		_, err = merge.Step(ctx)
		require.NoError(t, err)
	}

	values, sentinels := drain(out)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, values)
	assert.Equal(t, 1, sentinels)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "RUNNING", StateRunning.String())
	assert.Equal(t, "HALTED", StateHalted.String())
	assert.Equal(t, "SHUT_DOWN", StateShutDown.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
