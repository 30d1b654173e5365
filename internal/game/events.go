package game

import (
	"sync"

	"github.com/sephii/wtm-bot/internal/wtm"
)

// EventType names the engine's domain events.
type EventType string

const (
	EventNewShot        = EventType("new_shot")
	EventCorrectGuess   = EventType("correct_guess")
	EventIncorrectGuess = EventType("incorrect_guess")
	EventShotTimeout    = EventType("shot_timeout")
	EventShotSkipped    = EventType("shot_skipped")
	EventGameFinished   = EventType("game_finished")
)

// Event is one tagged payload variant per event type.
type Event interface {
	Type() EventType
}

// NewShotEvent announces the shot players should guess next.
type NewShotEvent struct {
	Number int
	Total  int
	Shot   *wtm.Shot
}

func (NewShotEvent) Type() EventType { return EventNewShot }

// CorrectGuessEvent carries the winning guess of a round. Scores is a
// snapshot of the score table taken after the points were added. Ref is
// the opaque message reference the adapter supplied with the guess.
type CorrectGuessEvent struct {
	Player string
	Title  string
	Points int
	Combo  int
	Scores map[string]int
	Ref    any
}

func (CorrectGuessEvent) Type() EventType { return EventCorrectGuess }

type IncorrectGuessEvent struct {
	Player string
	Guess  string
	Ref    any
}

func (IncorrectGuessEvent) Type() EventType { return EventIncorrectGuess }

// ShotTimeoutEvent fires when a round's countdown elapses with no winner.
type ShotTimeoutEvent struct {
	Shot *wtm.Shot
}

func (ShotTimeoutEvent) Type() EventType { return EventShotTimeout }

// ShotSkippedEvent fires when the skip vote quorum is reached.
type ShotSkippedEvent struct {
	Shot *wtm.Shot
	Ref  any
}

func (ShotSkippedEvent) Type() EventType { return EventShotSkipped }

type GameFinishedEvent struct {
	Scores map[string]int
}

func (GameFinishedEvent) Type() EventType { return EventGameFinished }

// Handler consumes one event. Handlers run on their own goroutines; the
// engine never waits for them.
type Handler func(Event)

// Emitter is a per-game fan-out of domain events to subscribers.
type Emitter struct {
	mu          sync.Mutex
	subscribers map[EventType][]Handler
}

func NewEmitter() *Emitter {
	return &Emitter{subscribers: make(map[EventType][]Handler)}
}

// Subscribe appends a handler for the event type. Subscribers for the
// same type are independent; each gets its own goroutine per event.
func (e *Emitter) Subscribe(eventType EventType, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers[eventType] = append(e.subscribers[eventType], handler)
}

// Emit dispatches the event to every subscriber without awaiting any of
// them.
func (e *Emitter) Emit(event Event) {
	e.mu.Lock()
	handlers := make([]Handler, len(e.subscribers[event.Type()]))
	copy(handlers, e.subscribers[event.Type()])
	e.mu.Unlock()

	for _, handler := range handlers {
		go handler(event)
	}
}
