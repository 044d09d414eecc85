package sheet_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impact7/scoredesk/core/sheet"
)

const quiet = 20 * time.Millisecond

func receive(t *testing.T, l *sheet.Lookup) sheet.LookupResult {
	t.Helper()
	select {
	case r, ok := <-l.Results():
		require.True(t, ok, "results closed")
		return r
	case <-time.After(time.Second):
		t.Fatal("no lookup result")
	}
	return sheet.LookupResult{}
}

func TestLookup_Debounces(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	l := sheet.NewLookup(context.Background(), quiet, func(_ context.Context, name string) (sheet.Aggregates, error) {
		mu.Lock()
		calls = append(calls, name)
		mu.Unlock()
		return sheet.Aggregates{"1", "2", "3", "4"}, nil
	})
	defer l.Close()

	for _, q := range []string{"K", "Ki", "Kim "} {
		l.Submit(q)
	}

	r := receive(t, l)
	assert.Equal(t, "Kim", r.Name)
	assert.NoError(t, r.Err)
	assert.Equal(t, [4]float64{1, 2, 3, 4}, r.Trend)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Kim"}, calls, "only the last query after the quiet period runs")
}

func TestLookup_SupersedesInflight(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})
	l := sheet.NewLookup(context.Background(), quiet, func(ctx context.Context, name string) (sheet.Aggregates, error) {
		if name == "slow" {
			close(started)
			<-ctx.Done()
			close(canceled)
			return sheet.Aggregates{"stale"}, ctx.Err()
		}
		return sheet.Aggregates{"", "", "", name}, nil
	})
	defer l.Close()

	l.Submit("slow")
	<-started
	l.Submit("fast")

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("in-flight lookup was not canceled")
	}

	r := receive(t, l)
	assert.Equal(t, "fast", r.Name)
	assert.Equal(t, "fast", r.Aggregates[3])
}

func TestLookup_Close(t *testing.T) {
	l := sheet.NewLookup(context.Background(), quiet, func(context.Context, string) (sheet.Aggregates, error) {
		t.Error("closed lookups never run")
		return sheet.Aggregates{}, nil
	})
	l.Submit("Kim")
	l.Close()
	l.Close()
	l.Submit("Lee")

	time.Sleep(3 * quiet)
	_, ok := <-l.Results()
	assert.False(t, ok)
}
