package flip

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
)

// Priority orders queued shared transitions.
type Priority int

const (
	Low Priority = iota
	Normal
	High
	Critical
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

type sharedTransition struct {
	id       string
	src, dst element.Handle
	cfg      Config
	priority Priority
	seq      uint64

	prevVisibility string
	hadVisibility  bool
}

// SharedTransitions morphs one element into another: the target plays a
// FLIP from the source's box while the source is hidden. Transitions are
// started highest priority first, in queue order within a priority, and an
// element takes part in at most one transition at a time.
type SharedTransitions struct {
	mu     sync.Mutex
	anim   *Animator
	queue  []*sharedTransition
	active map[string]*sharedTransition
	busy   map[element.Handle]string
	seq    uint64
	detach func()
}

// NewSharedTransitions creates a queue playing through a. When a is attached
// to a scheduler the queue attaches to the same one.
func NewSharedTransitions(a *Animator) *SharedTransitions {
	s := &SharedTransitions{
		anim:   a,
		active: make(map[string]*sharedTransition),
		busy:   make(map[element.Handle]string),
	}
	if a.sched != nil {
		s.detach = a.sched.Attach(s)
	}
	return s
}

// Close detaches the queue from its scheduler.
func (s *SharedTransitions) Close() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Queue schedules a transition from src to dst and returns its id. It starts
// on a later Tick once neither element is busy.
func (s *SharedTransitions) Queue(src, dst element.Handle, cfg Config, priority Priority) (string, error) {
	const op = "flip.SharedTransitions.Queue"
	switch {
	case src == nil || dst == nil:
		return "", errors.InvalidValue(op, "source and target must be non-nil")
	case src == dst:
		return "", errors.InvalidValue(op, "source and target must differ")
	case priority < Low || priority > Critical:
		return "", errors.InvalidValue(op, "unknown priority %d", priority)
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &sharedTransition{
		id:       uuid.NewString(),
		src:      src,
		dst:      dst,
		cfg:      cfg,
		priority: priority,
		seq:      s.seq,
	}
	s.queue = append(s.queue, t)
	sort.SliceStable(s.queue, func(i, j int) bool {
		if s.queue[i].priority != s.queue[j].priority {
			return s.queue[i].priority > s.queue[j].priority
		}
		return s.queue[i].seq < s.queue[j].seq
	})
	return t.id, nil
}

// Tick starts every queued transition whose elements are free. It
// implements scheduler.Client.
func (s *SharedTransitions) Tick(float64) {
	s.mu.Lock()
	var starting []*sharedTransition
	kept := s.queue[:0]
	for _, t := range s.queue {
		if s.busy[t.src] != "" || s.busy[t.dst] != "" {
			kept = append(kept, t)
			continue
		}
		s.busy[t.src], s.busy[t.dst] = t.id, t.id
		s.active[t.id] = t
		starting = append(starting, t)
	}
	clear(s.queue[len(kept):])
	s.queue = kept
	s.mu.Unlock()

	for _, t := range starting {
		if sr, ok := t.src.(element.StyleReader); ok {
			t.prevVisibility, t.hadVisibility = sr.Style("visibility")
		}
		t.src.SetStyle("visibility", "hidden")
		id := t.id
		s.anim.playFrom(t.src, t.dst, t.cfg, func() { s.release(id) })
	}
}

// release frees the elements of transition id and shows its source again.
func (s *SharedTransitions) release(id string) {
	s.mu.Lock()
	t, ok := s.active[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	delete(s.busy, t.src)
	delete(s.busy, t.dst)
	s.mu.Unlock()

	if t.hadVisibility {
		t.src.SetStyle("visibility", t.prevVisibility)
	} else {
		t.src.RemoveStyle("visibility")
	}
}

// Cancel removes a queued transition or stops a running one.
func (s *SharedTransitions) Cancel(id string) error {
	s.mu.Lock()
	for i, t := range s.queue {
		if t.id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			s.mu.Unlock()
			return nil
		}
	}
	t, ok := s.active[id]
	s.mu.Unlock()
	if !ok {
		return &errors.MotionError{Op: "flip.SharedTransitions.Cancel", Kind: errors.KindNotFound, Err: fmt.Errorf("no shared transition %q", id)}
	}
	_ = s.anim.Cancel(t.dst)
	s.release(id)
	return nil
}

// CancelAll drops the queue and stops every running transition.
func (s *SharedTransitions) CancelAll() {
	s.mu.Lock()
	s.queue = nil
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	for _, id := range ids {
		_ = s.Cancel(id)
	}
}

// ActiveCount returns the number of running transitions.
func (s *SharedTransitions) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// QueuedCount returns the number of transitions waiting to start.
func (s *SharedTransitions) QueuedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Busy reports whether el takes part in a running transition.
func (s *SharedTransitions) Busy(el element.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[el] != ""
}
