package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tycoonhq/backend/platform/board"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeScheduler struct {
	mu     sync.Mutex
	tasks  map[string]func()
	delays map[string]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(map[string]func()), delays: make(map[string]time.Duration)}
}

func (f *fakeScheduler) Schedule(key string, d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[key] = fn
	f.delays[key] = d
}

func (f *fakeScheduler) Cancel(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, key)
	delete(f.delays, key)
}

// fire runs a pending task as if its timer elapsed.
func (f *fakeScheduler) fire(key string) bool {
	f.mu.Lock()
	fn, ok := f.tasks[key]
	delete(f.tasks, key)
	delete(f.delays, key)
	f.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

func (f *fakeScheduler) pending(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tasks[key]
	return ok
}

type recorder struct {
	mu    sync.Mutex
	snaps []*Snapshot
}

func (r *recorder) Publish(roomId string, snap *Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, snap)
	r.mu.Unlock()
}

func (r *recorder) last() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return nil
	}
	return r.snaps[len(r.snaps)-1]
}

// diceScript feeds predetermined rolls, then falls back to 1,2.
type diceScript struct {
	mu    sync.Mutex
	rolls [][2]int
}

func (d *diceScript) push(pairs ...[2]int) {
	d.mu.Lock()
	d.rolls = append(d.rolls, pairs...)
	d.mu.Unlock()
}

func (d *diceScript) roll() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rolls) == 0 {
		return 1, 2
	}
	next := d.rolls[0]
	d.rolls = d.rolls[1:]
	return next[0], next[1]
}

type fixture struct {
	s     *Session
	clock *fakeClock
	sched *fakeScheduler
	cast  *recorder
	dice  *diceScript
}

// newFixture builds a started session on the classic board with the given
// player names (ids p1, p2, ...).
func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	tiles, err := board.Build("classic", nil)
	if err != nil {
		t.Fatal(err)
	}
	chance, chest := board.LoadCards()
	f := &fixture{
		clock: &fakeClock{now: time.Unix(1700000000, 0)},
		sched: newFakeScheduler(),
		cast:  &recorder{},
		dice:  &diceScript{},
	}
	f.s = NewSession("room1", "test room", DefaultConfig(), tiles, chance, chest, Deps{
		Clock:     f.clock,
		Scheduler: f.sched,
		Broadcast: f.cast,
		Roll:      f.dice.roll,
		Seed:      42,
	})
	for i, name := range names {
		if err := f.s.AddPlayer(fmt.Sprintf("p%d", i+1), name); err != nil {
			t.Fatal(err)
		}
	}
	if len(names) >= 2 {
		if err := f.s.Start("p1"); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *fixture) player(t *testing.T, id string) *Player {
	t.Helper()
	p := f.s.player(id)
	if p == nil {
		t.Fatalf("no player %s", id)
	}
	return p
}

// give hands a tile to a player directly, bypassing the ledger.
func (f *fixture) give(id string, tileIds ...int) {
	p := f.s.player(id)
	for _, tid := range tileIds {
		f.s.Tiles[tid].OwnerId = id
		p.Properties[tid] = true
	}
}
