package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	type args[T any] struct {
		key string
		val *T
		m   *MStorage
	}
	type testCase[T any] struct {
		name    string
		args    args[T]
		wantErr error
	}
	type target struct {
		Key string
		Val int
	}
	ms := NewMemStorage()
	tests := []testCase[target]{
		{
			name: "default",
			args: args[target]{
				key: "key1",
				val: &target{Key: "key1", Val: 1},
				m:   ms,
			},
		}, {
			name: "duplicate records",
			args: args[target]{
				key: "key1",
				val: &target{Key: "key1", Val: 2},
				m:   ms,
			},
			wantErr: ErrDuplicateKey,
		}, {
			name: "another key",
			args: args[target]{
				key: "key2",
				val: &target{Key: "key2", Val: 3},
				m:   ms,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Set[target](t.Context(), tt.args.key, tt.args.val, tt.args.m)
			if err != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: Set() error = %+v, wantErr %+v", tt.name, err, tt.wantErr)
			}

			if tt.wantErr == nil {
				val, getErr := Get[target](t.Context(), tt.args.key, tt.args.m)
				if getErr != nil {
					t.Fatal(getErr)
				}
				if val.Key != tt.args.val.Key || val.Val != tt.args.val.Val {
					t.Errorf("%s: Set() Val = %+v, want %+v", tt.name, val, tt.args.val)
				}
			}
		})
	}
}

func TestSet_ConcurrentSameKey(t *testing.T) {
	ms := NewMemStorage()
	const workers = 50

	var (
		wg      sync.WaitGroup
		success atomic.Int32
		dup     atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := i
			err := Set[int](context.Background(), "race", &v, ms)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, ErrDuplicateKey):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(workers-1), dup.Load())
}

func TestGetDelete(t *testing.T) {
	ms := NewMemStorage()
	ctx := t.Context()

	_, err := Get[string](ctx, "missing", ms)
	require.ErrorIs(t, err, ErrNotFound)

	val := "value"
	require.NoError(t, Set[string](ctx, "key", &val, ms))
	assert.True(t, ms.IsExist("key"))
	assert.Equal(t, 1, ms.Len())

	require.NoError(t, Delete(ctx, "key", ms))
	require.NoError(t, Delete(ctx, "key", ms))
	assert.False(t, ms.IsExist("key"))
}

func TestFilterAll(t *testing.T) {
	ms := NewMemStorage()
	ctx := t.Context()
	for i := range 10 {
		v := i
		require.NoError(t, Set[int](ctx, string(rune('a'+i)), &v, ms))
	}

	even, err := FilterAll[int](ctx, ms, func(val int) bool { return val%2 == 0 })
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 2, 4, 6, 8}, even)
}

func TestCanceledContext(t *testing.T) {
	ms := NewMemStorage()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	v := 1
	require.ErrorIs(t, Set[int](ctx, "k", &v, ms), context.Canceled)
	_, err := Get[int](ctx, "k", ms)
	require.ErrorIs(t, err, context.Canceled)
	_, err = FilterAll[int](ctx, ms, func(int) bool { return true })
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, ms.Ping(ctx), context.Canceled)
}
