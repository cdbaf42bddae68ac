package tracker

import "time"

// TaskRecord is the latest known state of one batch item's task.
type TaskRecord struct {
	// Index is the position of the item in the batch.
	Index int `json:"index"`

	// TaskID is empty until the service has accepted the submission.
	TaskID string `json:"task_id"`

	Query string `json:"query"`

	// State is the lifecycle state, e.g. "polling" or "succeeded".
	State string `json:"state"`

	// Status is the last status value reported by the service.
	Status string `json:"status"`

	// Attempts counts status calls made so far.
	Attempts int `json:"attempts"`

	ElapsedMs int64 `json:"elapsed_ms"`

	UpdatedAt time.Time `json:"updated_at"`

	// Error is set once the task has failed or timed out.
	Error *string `json:"error"`
}

// Tracker stores task records and publishes changes.
//
// Implementations must be safe for concurrent access.
type Tracker interface {
	// Update stores a record, replacing any previous record with the same
	// Index, and notifies all subscribers.
	Update(rec TaskRecord)

	// GetAll returns a snapshot of all records ordered by Index.
	GetAll() []TaskRecord

	// Subscribe returns a buffered channel that receives every update.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan TaskRecord

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan TaskRecord)
}
