package sequencer

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/quizbuzz/internal/catalog"
	"github.com/dgnsrekt/quizbuzz/internal/segment"
)

// Player plays one segment at a time. onFinish must not be called once the
// segment has been superseded or stopped.
type Player interface {
	Play(ctx context.Context, loc segment.Locator, onFinish func())
	Stop()
}

// Segments resolves and probes segment locators.
type Segments interface {
	Locate(category string, index int, part segment.Part) segment.Locator
	Cue() segment.Locator
	Exists(ctx context.Context, loc segment.Locator) bool
	Prefetch(ctx context.Context, loc segment.Locator)
}

// Questions chooses questions and provides their text.
type Questions interface {
	RandomIndex(category string) (int, error)
	Record(category string, index int) (catalog.Record, bool)
}

// Snapshot is a read-only view of the sequencer.
type Snapshot struct {
	State    State
	Category string
	Index    int
	Buzzed   bool
	Record   catalog.Record
	HasText  bool   // Record carries question and answer text
	Version  uint64 // increases with every snapshot
}

// Sequencer runs the question state machine. All methods are safe for
// concurrent use; playback completions and user actions are serialized
// under one lock, and every completion is tagged with the generation of the
// playback it belongs to so that late ones are dropped.
type Sequencer struct {
	player    Player
	segments  Segments
	questions Questions
	logger    *log.Logger
	notify    func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	sm          *stateMachine
	gen         uint64
	version     uint64
	category    string
	index       int
	record      catalog.Record
	hasText     bool
	buzzed      bool
	closed      bool
	probeCancel context.CancelFunc
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// WithNotify registers fn to receive a snapshot after every state change.
// fn is called without the sequencer lock held and must not block for long.
func WithNotify(fn func(Snapshot)) Option {
	return func(s *Sequencer) { s.notify = fn }
}

// New returns an idle sequencer.
func New(player Player, segments Segments, questions Questions, opts ...Option) *Sequencer {
	s := &Sequencer{
		player:    player,
		segments:  segments,
		questions: questions,
		sm:        newStateMachine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("sequencer")
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.sm.onTransition = func(from, to State) {
		s.logger.Debug("state", "from", from, "to", to, "category", s.category, "index", s.index)
	}
	return s
}

// Start picks a random question from category and plays its lead-in. It
// fails with ErrInvalidTransition outside the idle state and after Close.
func (s *Sequencer) Start(category string) error {
	s.mu.Lock()
	if s.closed || s.sm.current != StateIdle {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	index, err := s.questions.RandomIndex(category)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.startLocked(category, index)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Buzz interrupts the lead-in, cue or clue and plays the answer of the same
// question. It is ignored in any other state.
func (s *Sequencer) Buzz() bool {
	s.mu.Lock()
	if !s.sm.current.Buzzable() {
		s.mu.Unlock()
		return false
	}
	s.buzzed = true
	s.cancelProbeLocked()
	s.player.Stop()
	s.playAnswerLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("buzz", "category", snap.Category, "index", snap.Index)
	s.publish(snap)
	return true
}

// Continue starts a new random question in the same category once the
// answer has been shown.
func (s *Sequencer) Continue() bool {
	s.mu.Lock()
	if !s.sm.transition(StateIdle) {
		s.mu.Unlock()
		return false
	}
	category := s.category
	index, err := s.questions.RandomIndex(category)
	if err != nil {
		s.logger.Warn("unable to pick next question", "category", category, "err", err)
		s.clearLocked()
	} else {
		s.startLocked(category, index)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// ReturnToMenu leaves the shown answer and goes back to idle.
func (s *Sequencer) ReturnToMenu() bool {
	s.mu.Lock()
	if !s.sm.transition(StateIdle) {
		s.mu.Unlock()
		return false
	}
	s.gen++
	s.clearLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// Snapshot returns the current state.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops playback, abandons pending work and returns to idle. Start
// is refused afterwards.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.cancelProbeLocked()
	s.player.Stop()
	s.sm.reset()
	s.clearLocked()
	s.mu.Unlock()
	s.cancel()
}

// startLocked must be called with s.mu held and the machine idle.
func (s *Sequencer) startLocked(category string, index int) {
	s.category = category
	s.index = index
	s.buzzed = false
	s.record, s.hasText = s.questions.Record(category, index)
	s.sm.transition(StatePlayingPart1)

	// the answer is needed soonest after a buzz
	s.segments.Prefetch(s.ctx, s.segments.Locate(category, index, segment.PartAnswer))
	s.playLocked(s.segments.Locate(category, index, segment.PartLeadIn), s.onPart1Done)
}

// playLocked starts loc under a new generation; next runs on natural
// completion if nothing else has happened since.
func (s *Sequencer) playLocked(loc segment.Locator, next func(gen uint64)) {
	s.gen++
	gen := s.gen
	s.player.Play(s.ctx, loc, func() { next(gen) })
}

func (s *Sequencer) playAnswerLocked() {
	s.sm.transition(StatePlayingAnswer)
	s.playLocked(s.segments.Locate(s.category, s.index, segment.PartAnswer), s.onAnswerDone)
}

func (s *Sequencer) onPart1Done(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.sm.current != StatePlayingPart1 {
		s.mu.Unlock()
		return
	}
	clue := s.segments.Locate(s.category, s.index, segment.PartClue)
	ctx, cancel := context.WithCancel(s.ctx)
	s.probeCancel = cancel
	s.mu.Unlock()

	exists := s.segments.Exists(ctx, clue)
	cancel()

	s.mu.Lock()
	if gen != s.gen || s.sm.current != StatePlayingPart1 {
		s.mu.Unlock()
		return
	}
	s.probeCancel = nil
	if s.buzzed || !exists {
		s.logger.Debug("skipping clue", "segment", clue, "buzzed", s.buzzed, "exists", exists)
		s.playAnswerLocked()
	} else {
		s.sm.transition(StatePlayingCueAndPart2)
		s.playLocked(s.segments.Cue(), s.onCueDone)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Sequencer) onCueDone(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.sm.current != StatePlayingCueAndPart2 {
		return
	}
	s.playLocked(s.segments.Locate(s.category, s.index, segment.PartClue), s.onPart2Done)
}

func (s *Sequencer) onPart2Done(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.sm.current != StatePlayingCueAndPart2 {
		s.mu.Unlock()
		return
	}
	s.playAnswerLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Sequencer) onAnswerDone(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.sm.transition(StateAnswerShown) {
		s.mu.Unlock()
		return
	}
	s.gen++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Sequencer) cancelProbeLocked() {
	if s.probeCancel != nil {
		s.probeCancel()
		s.probeCancel = nil
	}
}

func (s *Sequencer) clearLocked() {
	s.category = ""
	s.index = 0
	s.record = catalog.Record{}
	s.hasText = false
	s.buzzed = false
}

func (s *Sequencer) snapshotLocked() Snapshot {
	s.version++
	return Snapshot{
		State:    s.sm.current,
		Category: s.category,
		Index:    s.index,
		Buzzed:   s.buzzed,
		Record:   s.record,
		HasText:  s.hasText,
		Version:  s.version,
	}
}

func (s *Sequencer) publish(snap Snapshot) {
	if s.notify != nil {
		s.notify(snap)
	}
}
