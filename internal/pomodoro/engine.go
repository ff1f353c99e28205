package pomodoro

import (
	"log/slog"
	"math"
	"time"

	"github.com/sadopc/biome/internal/store"
)

const (
	// DefaultTickInterval is how often a driver should call Tick.
	DefaultTickInterval = 200 * time.Millisecond
	// DefaultSnapshotInterval bounds how often a running timer is persisted.
	DefaultSnapshotInterval = 5 * time.Second
	// DefaultAutoStartDelay is the pause between a completion and an
	// auto-started next phase.
	DefaultAutoStartDelay = 500 * time.Millisecond
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Completion describes a phase that ran down to zero.
type Completion struct {
	Finished           Phase
	Next               Phase
	CompletedPomodoros int
	At                 time.Time
}

// State is a read-only view of the engine.
type State struct {
	Phase              Phase
	Running            bool
	TimeLeft           int // seconds
	CompletedPomodoros int
	EndTime            time.Time // zero while paused
	AutoStartPending   bool
	Settings           Settings
}

// snapshot is the persisted timer state. EndTime is epoch milliseconds and
// is set exactly when IsRunning is true.
type snapshot struct {
	IsRunning          bool   `json:"isRunning"`
	TimerType          Phase  `json:"timerType"`
	TimeLeft           int    `json:"timeLeft"`
	CompletedPomodoros int    `json:"completedPomodoros"`
	EndTime            *int64 `json:"endTime"`
}

type Options struct {
	Clock            Clock
	Logger           *slog.Logger
	Counter          *Counter
	SnapshotInterval time.Duration
	AutoStartDelay   time.Duration
}

type observer struct {
	id uint64
	fn func(Completion)
}

// Engine is a wall-clock countdown over work and break phases. While
// running, the absolute end time is authoritative and the time left is
// derived from it on every Tick.
//
// The engine is not safe for concurrent use; one goroutine (the UI event
// loop) drives it.
type Engine struct {
	kv      store.KV
	logger  *slog.Logger
	clock   Clock
	counter *Counter

	snapshotEvery  time.Duration
	autoStartDelay time.Duration

	settings    Settings
	phase       Phase
	running     bool
	timeLeft    int
	completed   int
	endTime     time.Time
	autoStartAt time.Time

	lastSnapshot time.Time
	generation   uint64

	observers  []observer
	observerID uint64
}

// New restores the engine from kv. Missing or malformed state falls back to
// a paused work phase at full length.
func New(kv store.KV, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = DefaultSnapshotInterval
	}
	if opts.AutoStartDelay <= 0 {
		opts.AutoStartDelay = DefaultAutoStartDelay
	}
	e := &Engine{
		kv:             kv,
		logger:         opts.Logger.With("component", "pomodoro"),
		clock:          opts.Clock,
		counter:        opts.Counter,
		snapshotEvery:  opts.SnapshotInterval,
		autoStartDelay: opts.AutoStartDelay,
	}
	e.settings = store.Load(kv, store.KeyPomodoroSettings, DefaultSettings(), e.logger).sanitize()
	e.restore(store.Load[*snapshot](kv, store.KeyTimerState, nil, e.logger))
	return e
}

func (e *Engine) restore(snap *snapshot) {
	now := e.clock.Now()
	if snap == nil || !snap.TimerType.Valid() {
		e.phase = Work
		e.timeLeft = e.settings.Seconds(Work)
		e.persist(now)
		return
	}

	e.phase = snap.TimerType
	e.completed = max(snap.CompletedPomodoros, 0)

	if snap.IsRunning && snap.EndTime != nil {
		e.running = true
		e.endTime = time.UnixMilli(*snap.EndTime)
		e.timeLeft = e.remaining(now)
		e.lastSnapshot = now
		e.logger.Debug("resumed running timer", "phase", e.phase, "time_left", e.timeLeft)
		return
	}

	e.timeLeft = snap.TimeLeft
	if e.timeLeft <= 0 {
		e.timeLeft = e.settings.Seconds(e.phase)
	}
	if snap.IsRunning || snap.EndTime != nil {
		e.logger.Warn("repairing inconsistent timer snapshot", "running", snap.IsRunning)
		e.persist(now)
	}
}

func (e *Engine) remaining(now time.Time) int {
	secs := math.Round(float64(e.endTime.Sub(now)) / float64(time.Second))
	return max(int(secs), 0)
}

func (e *Engine) persist(now time.Time) {
	snap := snapshot{
		IsRunning:          e.running,
		TimerType:          e.phase,
		TimeLeft:           e.timeLeft,
		CompletedPomodoros: e.completed,
	}
	if e.running {
		ms := e.endTime.UnixMilli()
		snap.EndTime = &ms
	}
	_ = store.Save(e.kv, store.KeyTimerState, snap, e.logger)
	e.lastSnapshot = now
}

// halt stops the countdown, drops a pending auto-start and invalidates any
// tick scheduled for the previous run.
func (e *Engine) halt() {
	e.running = false
	e.endTime = time.Time{}
	e.autoStartAt = time.Time{}
	e.generation++
}

// Start begins counting down the current phase. Starting a running timer
// does nothing.
func (e *Engine) Start() {
	if e.running {
		return
	}
	now := e.clock.Now()
	if e.timeLeft <= 0 {
		e.timeLeft = e.settings.Seconds(e.phase)
	}
	e.autoStartAt = time.Time{}
	e.running = true
	e.endTime = now.Add(time.Duration(e.timeLeft) * time.Second)
	e.generation++
	e.persist(now)
}

// Pause freezes the time left at its last computed value.
func (e *Engine) Pause() {
	if !e.running {
		e.autoStartAt = time.Time{}
		return
	}
	e.halt()
	e.persist(e.clock.Now())
}

// Toggle starts a paused timer or pauses a running one.
func (e *Engine) Toggle() {
	if e.running {
		e.Pause()
		return
	}
	e.Start()
}

// Reset pauses and refills the current phase.
func (e *Engine) Reset() {
	e.halt()
	e.timeLeft = e.settings.Seconds(e.phase)
	e.persist(e.clock.Now())
}

// Skip pauses and moves to the next phase without counting a completion.
func (e *Engine) Skip() {
	e.halt()
	e.phase = e.nextAfterSkip()
	e.timeLeft = e.settings.Seconds(e.phase)
	e.persist(e.clock.Now())
}

func (e *Engine) nextAfterSkip() Phase {
	if e.phase != Work {
		return Work
	}
	n := e.settings.LongBreakInterval
	if e.completed%n == n-1 {
		return LongBreak
	}
	return ShortBreak
}

// ChangePhase pauses and jumps to p at full length.
func (e *Engine) ChangePhase(p Phase) bool {
	if !p.Valid() {
		return false
	}
	e.halt()
	e.phase = p
	e.timeLeft = e.settings.Seconds(p)
	e.persist(e.clock.Now())
	return true
}

// UpdateSettings merges patch, pauses the timer and refills the current
// phase with its new length.
func (e *Engine) UpdateSettings(patch SettingsPatch) Settings {
	e.settings = e.settings.apply(patch)
	_ = store.Save(e.kv, store.KeyPomodoroSettings, e.settings, e.logger)
	e.halt()
	e.timeLeft = e.settings.Seconds(e.phase)
	e.persist(e.clock.Now())
	return e.settings
}

// Tick recomputes the time left from the end time and handles completion
// and pending auto-starts. It reports the completion when one happened.
func (e *Engine) Tick() (Completion, bool) {
	now := e.clock.Now()
	if !e.running {
		if !e.autoStartAt.IsZero() && !now.Before(e.autoStartAt) {
			e.autoStartAt = time.Time{}
			e.Start()
		}
		return Completion{}, false
	}

	e.timeLeft = e.remaining(now)
	if e.timeLeft == 0 {
		return e.complete(now), true
	}
	if now.Sub(e.lastSnapshot) >= e.snapshotEvery {
		e.persist(now)
	}
	return Completion{}, false
}

func (e *Engine) complete(now time.Time) Completion {
	finished := e.phase
	e.halt()

	next := Work
	if finished == Work {
		e.completed++
		if e.counter != nil {
			e.counter.Increment()
		}
		next = ShortBreak
		if e.completed%e.settings.LongBreakInterval == 0 {
			next = LongBreak
		}
	}
	e.phase = next
	e.timeLeft = e.settings.Seconds(next)
	e.persist(now)

	c := Completion{
		Finished:           finished,
		Next:               next,
		CompletedPomodoros: e.completed,
		At:                 now,
	}
	e.logger.Info("phase completed", "finished", finished, "next", next, "completed", e.completed)
	for _, o := range append([]observer(nil), e.observers...) {
		o.fn(c)
	}

	if (finished == Work && e.settings.AutoStartBreaks) || (finished != Work && e.settings.AutoStartPomodoros) {
		e.autoStartAt = now.Add(e.autoStartDelay)
	}
	return c
}

// Subscribe registers fn for every completion and returns a function that
// removes it.
func (e *Engine) Subscribe(fn func(Completion)) (unsubscribe func()) {
	e.observerID++
	id := e.observerID
	e.observers = append(e.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range e.observers {
			if o.id == id {
				e.observers = append(e.observers[:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// Generation changes on every transition. A driver scheduled under an older
// generation must not tick.
func (e *Engine) Generation() uint64 { return e.generation }

// NeedsTick reports whether a driver should keep ticking.
func (e *Engine) NeedsTick() bool {
	return e.running || !e.autoStartAt.IsZero()
}

func (e *Engine) Running() bool      { return e.running }
func (e *Engine) Phase() Phase       { return e.phase }
func (e *Engine) TimeLeft() int      { return e.timeLeft }
func (e *Engine) Completed() int     { return e.completed }
func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) State() State {
	return State{
		Phase:              e.phase,
		Running:            e.running,
		TimeLeft:           e.timeLeft,
		CompletedPomodoros: e.completed,
		EndTime:            e.endTime,
		AutoStartPending:   !e.autoStartAt.IsZero(),
		Settings:           e.settings,
	}
}
