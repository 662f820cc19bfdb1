package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/watcher"
	"go.trai.ch/pack/internal/core/ports"
)

func write(path string) ports.WatchEvent {
	return ports.WatchEvent{Path: path, Operation: ports.OpWrite}
}

type recorder struct {
	mu    sync.Mutex
	calls [][]ports.WatchEvent
}

func (r *recorder) record(changes []ports.WatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changes)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestDebouncer_CoalescesPaths(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(write("/project/src/b.ts"))
		d.Add(write("/project/src/a.ts"))
		d.Add(write("/project/src/b.ts"))

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		rec.mu.Lock()
		defer rec.mu.Unlock()
		require.Len(t, rec.calls, 1)
		assert.Equal(t, []ports.WatchEvent{
			write("/project/src/a.ts"),
			write("/project/src/b.ts"),
		}, rec.calls[0])
	})
}

func TestDebouncer_ReportsLatestOperation(t *testing.T) {
	var rec recorder
	d := watcher.NewDebouncer(time.Second, rec.record)

	d.Add(write("/project/src/a.ts"))
	d.Add(ports.WatchEvent{Path: "/project/src/a.ts", Operation: ports.OpRemove})
	d.Flush()

	require.Len(t, rec.calls, 1)
	assert.Equal(t, []ports.WatchEvent{
		{Path: "/project/src/a.ts", Operation: ports.OpRemove},
	}, rec.calls[0])
}

func TestDebouncer_DropsTransientFiles(t *testing.T) {
	tests := []struct {
		name   string
		events []ports.WatchEvent
		want   []ports.WatchEvent
	}{
		{
			name: "Swap file created and removed",
			events: []ports.WatchEvent{
				{Path: "/project/src/.index.ts.swp", Operation: ports.OpCreate},
				{Path: "/project/src/.index.ts.swp", Operation: ports.OpWrite},
				{Path: "/project/src/.index.ts.swp", Operation: ports.OpRemove},
				write("/project/src/index.ts"),
			},
			want: []ports.WatchEvent{write("/project/src/index.ts")},
		},
		{
			name: "Temporary renamed over the source",
			events: []ports.WatchEvent{
				{Path: "/project/src/index.ts~", Operation: ports.OpCreate},
				{Path: "/project/src/index.ts~", Operation: ports.OpRename},
				{Path: "/project/src/index.ts", Operation: ports.OpCreate},
			},
			want: []ports.WatchEvent{{Path: "/project/src/index.ts", Operation: ports.OpCreate}},
		},
		{
			name: "Removed then recreated",
			events: []ports.WatchEvent{
				{Path: "/project/src/index.ts", Operation: ports.OpRemove},
				{Path: "/project/src/index.ts", Operation: ports.OpCreate},
			},
			want: []ports.WatchEvent{{Path: "/project/src/index.ts", Operation: ports.OpCreate}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recorder
			d := watcher.NewDebouncer(time.Second, rec.record)

			for _, e := range tt.events {
				d.Add(e)
			}
			d.Flush()

			require.Len(t, rec.calls, 1)
			assert.Equal(t, tt.want, rec.calls[0])
		})
	}
}

func TestDebouncer_OnlyTransientFilesTriggerNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(50*time.Millisecond, rec.record)

		d.Add(ports.WatchEvent{Path: "/project/src/4913", Operation: ports.OpCreate})
		d.Add(ports.WatchEvent{Path: "/project/src/4913", Operation: ports.OpRemove})

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, 0, rec.count())
	})
}

func TestDebouncer_WindowRestartsOnAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(write("/project/src/a.ts"))
		time.Sleep(80 * time.Millisecond)
		d.Add(write("/project/src/a.ts"))
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, 0, rec.count())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, 1, rec.count())
	})
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(50*time.Millisecond, rec.record)

		d.Add(write("/project/src/a.ts"))
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add(write("/project/src/b.ts"))
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, 2, rec.count())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(time.Second, rec.record)

		d.Add(write("/project/src/a.ts"))
		d.Flush()

		require.Equal(t, 1, rec.count())
		assert.Equal(t, []ports.WatchEvent{write("/project/src/a.ts")}, rec.calls[0])

		// The stopped timer must not fire again.
		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Equal(t, 1, rec.count())
	})
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	var rec recorder
	d := watcher.NewDebouncer(time.Second, rec.record)

	d.Flush()

	assert.Equal(t, 0, rec.count())
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add(write("/project/src/a.ts"))

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
	})
}
