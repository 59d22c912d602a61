package engine_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/randpick/internal/picker"
	"github.com/cory-johannsen/randpick/internal/picker/engine"
	"github.com/cory-johannsen/randpick/internal/picker/history"
	"github.com/cory-johannsen/randpick/internal/picker/pool"
	"github.com/cory-johannsen/randpick/internal/picker/rng"
)

// countingSource cycles through indices so every tick draws a different value.
type countingSource struct {
	mu sync.Mutex
	n  int
}

func (c *countingSource) Intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.n % n
	c.n++
	return v
}

func (c *countingSource) Float64() float64 { return 0 }

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (c *countingNotifier) Notify(string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingNotifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func tickConfig() engine.TickConfig {
	return engine.TickConfig{
		Tool:     "number",
		Ticks:    engine.DefaultTicks,
		Interval: engine.DefaultTickInterval,
		Sound:    true,
	}
}

func newNumberTicker(t *testing.T, f *pool.NumberFilter, src rng.Source, n engine.Notifier) (*engine.Ticker[int], *manualScheduler) {
	sched := &manualScheduler{}
	tk := engine.NewTicker(tickConfig(), func() []int { return pool.Numbers(*f) },
		src, sched, history.NewLedger[int](10), n, zaptest.NewLogger(t))
	return tk, sched
}

func fullRoll() time.Duration {
	return time.Duration(engine.DefaultTicks) * engine.DefaultTickInterval
}

func TestTicker_TwentyTicksLastDrawWins(t *testing.T) {
	f := pool.NumberFilter{Min: 1, Max: 100}
	notifier := &countingNotifier{}
	tk, sched := newNumberTicker(t, &f, &countingSource{}, notifier)

	var shown []int
	tk.OnTick(func(_ int, v int) { shown = append(shown, v) })
	var resolved []int
	tk.OnResolve(func(v int) { resolved = append(resolved, v) })

	require.NoError(t, tk.Roll())
	assert.Equal(t, engine.Animating, tk.State().Phase)

	sched.Advance(fullRoll() - engine.DefaultTickInterval)
	s := tk.State()
	assert.Equal(t, engine.Animating, s.Phase)
	assert.Equal(t, 19, s.Tick)
	assert.Nil(t, s.Winner)

	sched.Advance(engine.DefaultTickInterval)
	s = tk.State()
	require.Equal(t, engine.Resolved, s.Phase)
	require.NotNil(t, s.Winner)
	assert.Equal(t, 20, *s.Winner, "countingSource draws index 19 on the last tick")
	assert.Equal(t, 20, s.Current)
	assert.Len(t, shown, 20)
	assert.Equal(t, []int{20}, resolved)
	assert.Equal(t, 20, notifier.Calls())
	assert.Zero(t, sched.Active(), "the tick timer cancels itself after the last tick")

	text, ok := tk.ResultText()
	assert.True(t, ok)
	assert.Equal(t, "20", text)
}

// TestTicker_EmptyPoolRefuses uses min=5, max=5, exclude "5".
func TestTicker_EmptyPoolRefuses(t *testing.T) {
	f := pool.NumberFilter{Min: 5, Max: 5, Exclude: "5"}
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)

	err := tk.Roll()
	assert.ErrorIs(t, err, picker.ErrEmptyPool)
	assert.Equal(t, engine.Idle, tk.State().Phase)
	assert.Zero(t, sched.Active())
	sched.Advance(fullRoll())
	assert.Zero(t, tk.History().Len())
}

func TestTicker_SinglePoolIsDeterministic(t *testing.T) {
	f := pool.NumberFilter{Min: 7, Max: 8, Exclude: "8"}
	tk, sched := newNumberTicker(t, &f, rng.NewSeededSource(3), nil)
	require.NoError(t, tk.Roll())
	sched.Advance(fullRoll())
	assert.Equal(t, 7, *tk.State().Winner)
}

func TestTicker_RollWhileAnimatingIsNoOp(t *testing.T) {
	f := pool.DefaultNumberFilter()
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)
	require.NoError(t, tk.Roll())
	sched.Advance(3 * engine.DefaultTickInterval)
	before := tk.State()

	assert.ErrorIs(t, tk.Roll(), picker.ErrInvalidState)
	assert.Equal(t, before, tk.State())
	assert.Equal(t, 1, sched.Active())
}

func TestTicker_PoolSnapshottedAtTrigger(t *testing.T) {
	f := pool.NumberFilter{Min: 1, Max: 3}
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)
	require.NoError(t, tk.Roll())

	// Narrowing the filter mid-roll must not affect the draws in progress.
	f.Min, f.Max = 50, 51
	var seen []int
	tk.OnTick(func(_ int, v int) { seen = append(seen, v) })
	sched.Advance(fullRoll())
	for _, v := range seen {
		assert.LessOrEqual(t, v, 3)
	}
}

// TestTicker_HistoryCap runs 15 rolls; the ledger keeps the 10 most recent.
func TestTicker_HistoryCap(t *testing.T) {
	f := pool.DefaultNumberFilter()
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)
	var winners []int
	tk.OnResolve(func(v int) { winners = append(winners, v) })
	for i := 0; i < 15; i++ {
		require.NoError(t, tk.Roll())
		sched.Advance(fullRoll())
	}
	require.Len(t, winners, 15)

	entries := tk.History().Entries()
	require.Len(t, entries, 10)
	for i, e := range entries {
		assert.Equal(t, winners[14-i], e.Value)
	}
}

func TestTicker_HistoryRecordedBeforeResultVisible(t *testing.T) {
	f := pool.NumberFilter{Min: 1, Max: 9}
	sched := &manualScheduler{}
	ledger := history.NewLedger[int](10)
	tk := engine.NewTicker(tickConfig(), func() []int { return pool.Numbers(f) },
		&countingSource{}, sched, ledger, nil, zaptest.NewLogger(t))

	var early atomic.Bool
	ledger.WithClock(earlyResultClock(func() bool {
		_, ok := tk.ResultText()
		return ok
	}, &early))

	require.NoError(t, tk.Roll())
	sched.Advance(fullRoll())
	assert.False(t, early.Load(), "result was readable before it was recorded")
	assert.Equal(t, 1, tk.History().Len())
}

func TestTicker_ResetCancels(t *testing.T) {
	f := pool.DefaultNumberFilter()
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)
	require.NoError(t, tk.Roll())
	sched.Advance(5 * engine.DefaultTickInterval)
	tk.Reset()

	s := tk.State()
	assert.Equal(t, engine.Idle, s.Phase)
	assert.Nil(t, s.Winner)
	sched.Advance(fullRoll())
	assert.Equal(t, engine.Idle, tk.State().Phase)
	assert.Zero(t, tk.History().Len())
}

func TestTicker_CloseCancels(t *testing.T) {
	f := pool.DefaultNumberFilter()
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)
	require.NoError(t, tk.Roll())
	tk.Close()
	sched.Advance(fullRoll())
	assert.Equal(t, engine.Idle, tk.State().Phase)
	assert.Zero(t, tk.History().Len())
}

func TestTicker_SoundToggleSilencesNotifier(t *testing.T) {
	f := pool.DefaultNumberFilter()
	notifier := &countingNotifier{}
	tk, sched := newNumberTicker(t, &f, &countingSource{}, notifier)
	assert.False(t, tk.ToggleSound())
	require.NoError(t, tk.Roll())
	sched.Advance(fullRoll())
	assert.Zero(t, notifier.Calls())
}

func TestTicker_SetInterval(t *testing.T) {
	f := pool.DefaultNumberFilter()
	tk, sched := newNumberTicker(t, &f, &countingSource{}, nil)
	assert.ErrorIs(t, tk.SetInterval(10*time.Millisecond), picker.ErrValidation)
	assert.ErrorIs(t, tk.SetInterval(201*time.Millisecond), picker.ErrValidation)
	require.NoError(t, tk.SetInterval(200*time.Millisecond))

	require.NoError(t, tk.Roll())
	assert.ErrorIs(t, tk.SetInterval(100*time.Millisecond), picker.ErrInvalidState)
	sched.Advance(19 * 200 * time.Millisecond)
	assert.True(t, tk.Animating())
	sched.Advance(200 * time.Millisecond)
	assert.False(t, tk.Animating())

	d, sound := tk.Settings()
	assert.Equal(t, 200*time.Millisecond, d)
	assert.True(t, sound)
}

func TestTicker_Letters(t *testing.T) {
	lf := pool.LetterFilter{IncludeUpper: true, Exclude: "abc"}
	sched := &manualScheduler{}
	cfg := tickConfig()
	cfg.Tool = "letter"
	tk := engine.NewTicker(cfg, func() []string { return pool.Letters(lf) },
		&countingSource{}, sched, history.NewLedger[string](10), nil, zaptest.NewLogger(t))
	require.NoError(t, tk.Roll())
	sched.Advance(fullRoll())
	// Pool is D..Z (23 letters); the 20th draw is index 19 -> "W".
	assert.Equal(t, "W", *tk.State().Winner)
}

func TestTicker_BothCasesOffRefuses(t *testing.T) {
	sched := &manualScheduler{}
	tk := engine.NewTicker(tickConfig(), func() []string { return pool.Letters(pool.LetterFilter{}) },
		&countingSource{}, sched, history.NewLedger[string](10), nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, tk.Roll(), picker.ErrEmptyPool)
	assert.Equal(t, engine.Idle, tk.State().Phase)
}
