package events

import (
	"context"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// EventOfferSubmitted is emitted when an operator submits an offer
	// into the pending queue
	EventOfferSubmitted EventType = "offer.submitted"
	// EventOfferApproved is emitted when a pending offer is written to
	// the relational store
	EventOfferApproved EventType = "offer.approved"
	// EventReconcileCompleted is emitted after a reconciliation pass
	EventReconcileCompleted EventType = "reconcile.completed"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// OfferSubmittedData contains data for offer submitted events.
type OfferSubmittedData struct {
	RestaurantID string
	Title        string
	OfferType    string
}

// OfferApprovedData contains data for offer approved events.
type OfferApprovedData struct {
	OfferID      string
	RestaurantID string
	Title        string
}

// ReconcileCompletedData contains data for reconcile completed events.
type ReconcileCompletedData struct {
	RestaurantID string
	Deleted      int
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
}

// NewManager creates a new event manager.
func NewManager(enabled bool) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish publishes an event to all subscribed handlers.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	if !m.enabled {
		return
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	// Execute handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			if err := h(ctx, event); err != nil {
				// In production, you might want to log this or send to error tracking
				_ = err
			}
		}(handler)
	}
}

// PublishOfferSubmitted publishes an offer submitted event.
func (m *Manager) PublishOfferSubmitted(ctx context.Context, restaurantID, title, offerType string) {
	m.Publish(ctx, EventOfferSubmitted, OfferSubmittedData{
		RestaurantID: restaurantID,
		Title:        title,
		OfferType:    offerType,
	})
}

// PublishOfferApproved publishes an offer approved event.
func (m *Manager) PublishOfferApproved(ctx context.Context, offerID, restaurantID, title string) {
	m.Publish(ctx, EventOfferApproved, OfferApprovedData{
		OfferID:      offerID,
		RestaurantID: restaurantID,
		Title:        title,
	})
}

// PublishReconcileCompleted publishes a reconcile completed event.
func (m *Manager) PublishReconcileCompleted(ctx context.Context, restaurantID string, deleted int) {
	m.Publish(ctx, EventReconcileCompleted, ReconcileCompletedData{
		RestaurantID: restaurantID,
		Deleted:      deleted,
	})
}

// Shutdown shuts down the event manager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
}
