package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/RoriKB/internal/models"
)

var (
	ErrClosed      = errors.New("event bus is closed")
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// SendMessageEvent - UI asks core to send a question
type SendMessageEvent struct {
	Message string
}

func (e SendMessageEvent) UIEvent() {}

// UploadCSVEvent - UI asks core to upload a knowledge-base file
type UploadCSVEvent struct {
	Path string
}

func (e UploadCSVEvent) UIEvent() {}

// DeleteCSVEvent - UI asks core to delete the knowledge base (core confirms first)
type DeleteCSVEvent struct{}

func (e DeleteCSVEvent) UIEvent() {}

// ReloadVectorDBEvent - UI asks core to reload the backend's vector store
type ReloadVectorDBEvent struct{}

func (e ReloadVectorDBEvent) UIEvent() {}

// ClearTranscriptEvent - UI asks core to forget the visible transcript
type ClearTranscriptEvent struct{}

func (e ClearTranscriptEvent) UIEvent() {}

// DismissNotificationEvent - user closed a notification
type DismissNotificationEvent struct {
	ID string
}

func (e DismissNotificationEvent) UIEvent() {}

// ResizeEvent - terminal width changed, bot messages need a re-render
type ResizeEvent struct {
	Width int
}

func (e ResizeEvent) UIEvent() {}

// ConfirmationResponseEvent - UI sends user's confirmation decision back to Core
type ConfirmationResponseEvent struct {
	ID       string // Must match the ID from ConfirmationRequestEvent
	Approved bool   // User's decision: true = proceed, false = abort
}

func (e ConfirmationResponseEvent) UIEvent() {}

// StateUpdateEvent - Core pushes a full snapshot of the display state
type StateUpdateEvent struct {
	Messages     []models.Message
	IsProcessing bool
	Typing       bool
	Notification *models.Notification
	Error        error
}

func (e StateUpdateEvent) CoreEvent() {}

// ConfirmationRequestEvent - Core asks the user to confirm an operation
type ConfirmationRequestEvent struct {
	ID     string
	Prompt string
}

func (e ConfirmationRequestEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker implements circuit breaker pattern
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && time.Since(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = time.Now()
	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// EventBus handles communication between UI and Core with circuit breaker.
// State snapshots travel on their own single-slot channel where a newer
// snapshot replaces one the UI has not picked up yet, so a fast stream can
// never fill the bus.
type EventBus struct {
	mu             sync.Mutex
	closed         bool
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	states         chan StateUpdateEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
}

func NewEventBus() *EventBus {
	return &EventBus{
		uiToCore:       make(chan UIEvent, 100),
		coreToUI:       make(chan CoreEvent, 100),
		states:         make(chan StateUpdateEvent, 1),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToCore", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("UI to Core channel is full")
		eb.reportError("SendToCore", err)
		return err
	}
}

func (eb *EventBus) SendToUI(event CoreEvent) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToUI", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("Core to UI channel is full")
		eb.reportError("SendToUI", err)
		return err
	}
}

// PublishState hands the UI the newest snapshot, dropping an older one that
// is still waiting. It never blocks.
func (eb *EventBus) PublishState(state StateUpdateEvent) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return ErrClosed
	}

	select {
	case <-eb.states:
	default:
	}
	eb.states <- state
	return nil
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) States() <-chan StateUpdateEvent {
	return eb.states
}

func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	return eb.circuitBreaker.State()
}

func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.uiToCore)
	close(eb.coreToUI)
	close(eb.states)
}
