package event

import (
	"sync"

	"quiz-client/internal/domain"
)

// Kind names a signal exchanged between widgets.
type Kind string

const (
	KindNicknameChosen   Kind = "nickname-chosen"
	KindQuestionSet      Kind = "question-set"
	KindAnswerSelected   Kind = "answer-selected"
	KindTimeExhausted    Kind = "time-exhausted"
	KindScoreRecorded    Kind = "score-recorded"
	KindRestartRequested Kind = "restart-requested"
	KindStopTimer        Kind = "stop-timer"
)

// Event is implemented by every signal payload.
type Event interface {
	Kind() Kind
}

// NicknameChosen carries the trimmed nickname from the form.
type NicknameChosen struct{ Nickname string }

// QuestionSet tells the timer and the display about the next question.
type QuestionSet struct {
	Question domain.Question
	Duration int
}

// AnswerSelected carries the raw answer value: an alternative key or free text.
type AnswerSelected struct{ Answer string }

// TimeExhausted is emitted by the countdown when it reaches zero.
type TimeExhausted struct{ Accumulated int }

// ScoreRecorded asks the board to persist a finished session. Message is the
// last thing the quiz service said, if anything.
type ScoreRecorded struct {
	Nickname string
	Score    int
	Message  string
}

// RestartRequested is emitted by the board's try-again action.
type RestartRequested struct{}

// StopTimer halts the countdown and folds consumed time into its total.
type StopTimer struct{}

func (NicknameChosen) Kind() Kind   { return KindNicknameChosen }
func (QuestionSet) Kind() Kind      { return KindQuestionSet }
func (AnswerSelected) Kind() Kind   { return KindAnswerSelected }
func (TimeExhausted) Kind() Kind    { return KindTimeExhausted }
func (ScoreRecorded) Kind() Kind    { return KindScoreRecorded }
func (RestartRequested) Kind() Kind { return KindRestartRequested }
func (StopTimer) Kind() Kind        { return KindStopTimer }

// Handler reacts to an emitted event.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Bus is a synchronous publish/subscribe hub. Each orchestrator owns its own
// bus, so sessions never observe each other's signals. Handlers run on the
// emitting goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Kind][]subscription
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]subscription)}
}

// Subscribe registers fn for kind. The returned cancel function is idempotent.
func (b *Bus) Subscribe(kind Kind, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[kind] = append(b.handlers[kind], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[kind]
		for i, sub := range subs {
			if sub.id == id {
				b.handlers[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every handler subscribed to its kind.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[e.Kind()]))
	copy(subs, b.handlers[e.Kind()])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(e)
	}
}

// On subscribes a handler typed to a concrete event payload.
func On[T Event](b *Bus, fn func(T)) func() {
	var zero T
	return b.Subscribe(zero.Kind(), func(e Event) {
		if typed, ok := e.(T); ok {
			fn(typed)
		}
	})
}
