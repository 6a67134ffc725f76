// Package events provides task and pool lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	// EventPoolStarted is emitted once the workers have been started
	EventPoolStarted EventType = "pool_started"
	// EventPoolStopped is emitted after every worker has exited
	EventPoolStopped EventType = "pool_stopped"
	// EventTaskSubmitted is emitted when a task enters the queue
	EventTaskSubmitted EventType = "task_submitted"
	// EventTaskCompleted is emitted when a task returns without error
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed is emitted when a task returns an error or panics
	EventTaskFailed EventType = "task_failed"
)

// Event represents a pool or task event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Workers  int    `json:"workers,omitempty"`
	Queued   int    `json:"queued,omitempty"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewPoolStartedEvent creates a pool started event
func NewPoolStartedEvent(workers int) Event {
	return Event{
		Type:      EventPoolStarted,
		Timestamp: time.Now(),
		Data:      EventData{Workers: workers},
	}
}

// NewPoolStoppedEvent creates a pool stopped event
func NewPoolStoppedEvent(workers int) Event {
	return Event{
		Type:      EventPoolStopped,
		Timestamp: time.Now(),
		Data:      EventData{Workers: workers},
	}
}

// NewTaskSubmittedEvent creates a task submitted event
func NewTaskSubmittedEvent(id uuid.UUID, queued int) Event {
	return Event{
		Type:      EventTaskSubmitted,
		Timestamp: time.Now(),
		TaskID:    id.String(),
		Data:      EventData{Queued: queued},
	}
}

// NewTaskCompletedEvent creates a task completed event
func NewTaskCompletedEvent(id uuid.UUID, took time.Duration) Event {
	return Event{
		Type:      EventTaskCompleted,
		Timestamp: time.Now(),
		TaskID:    id.String(),
		Data:      EventData{Duration: took.String()},
	}
}

// NewTaskFailedEvent creates a task failed event
func NewTaskFailedEvent(id uuid.UUID, took time.Duration, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventTaskFailed,
		Timestamp: time.Now(),
		TaskID:    id.String(),
		Data: EventData{
			Duration: took.String(),
			Error:    errMsg,
		},
	}
}
