package util

import (
	"testing"
	"time"
)

func TestSkipThrottler(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tt := NewSkipThrottler(time.Second)
	tt.now = func() time.Time { return now }

	tests := []struct {
		elapsed time.Duration
		ok      bool
	}{
		{elapsed: 0, ok: true},
		{elapsed: 500 * time.Millisecond, ok: false},
		{elapsed: 400 * time.Millisecond, ok: false},
		{elapsed: 100 * time.Millisecond, ok: true},
		{elapsed: 999 * time.Millisecond, ok: false},
		{elapsed: 5 * time.Second, ok: true},
	}
	for i, test := range tests {
		now = now.Add(test.elapsed)
		if ok := tt.Ok(); ok != test.ok {
			t.Fatalf("%d %t, expected %t", i, ok, test.ok)
		}
	}
}
