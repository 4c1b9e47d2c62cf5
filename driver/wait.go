package driver

import (
	"context"
	"reflect"
	"time"
)

// anyClosed reports whether at least one of chans is closed.
func anyClosed(chans []<-chan struct{}) bool {
	for _, ch := range chans {
		select {
		case <-ch:
			return true
		default:
		}
	}
	return false
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitAny waits until one of chans is closed, fallback elapses or ctx is
// done. The number of channels is only known at run time, hence
// reflect.Select.
func awaitAny(ctx context.Context, chans []<-chan struct{}, fallback time.Duration) error {
	if len(chans) == 0 {
		return sleep(ctx, fallback)
	}
	if len(chans) == 1 {
		timer := time.NewTimer(fallback)
		defer timer.Stop()
		select {
		case <-chans[0]:
			return nil
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(fallback)
	defer timer.Stop()

	cases := make([]reflect.SelectCase, 0, len(chans)+2)
	cases = append(cases,
		reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(timer.C)},
	)
	for _, ch := range chans {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ch)})
	}

	if chosen, _, _ := reflect.Select(cases); chosen == 0 {
		return ctx.Err()
	}
	return nil
}
