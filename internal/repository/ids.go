package repository

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces the id part of "<collection>:<id>" keys.
type IDGenerator interface {
	NewID(singular string, now time.Time) string
}

// TimestampIDs yields "<singular>_<unix millis>". Two creations of the same
// type within one millisecond get the same id and the second overwrites the
// first; existing data stores depend on this format.
type TimestampIDs struct{}

func (TimestampIDs) NewID(singular string, now time.Time) string {
	return singular + "_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// UUIDIDs yields "<singular>_<uuid>" and never collides.
type UUIDIDs struct{}

func (UUIDIDs) NewID(singular string, _ time.Time) string {
	return singular + "_" + uuid.NewString()
}
