// Package events publishes exercise events to Kafka.
package events

import "time"

// TypeExerciseRecorded is the event_type header of ExerciseRecorded messages.
const TypeExerciseRecorded = "exercise.recorded"

// ExerciseRecorded is emitted after an exercise has been persisted.
type ExerciseRecorded struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Date        string    `json:"date"`
	RecordedAt  time.Time `json:"recorded_at"`
}
