package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LiveEvent is an append-only archive entry for one emitted live-channel
// event (avatar speech, final transcript, completion). It exists for replay
// and debugging only; the in-memory ConnectionSession is never persisted.
type LiveEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	ConnID    string             `bson:"conn_id" json:"conn_id"`

	Event string `bson:"event" json:"event"` // avatar-speak|transcript-update|interview-complete|error
	Text  string `bson:"text,omitempty" json:"text,omitempty"`

	QuestionNumber int    `bson:"question_number,omitempty" json:"question_number,omitempty"`
	Emotion        string `bson:"emotion,omitempty" json:"emotion,omitempty"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
