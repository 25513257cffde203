package emailreader

import (
	"time"

	"work-planner/internal/models"
)

type Input struct {
	Since time.Time
}

type Output struct {
	Messages []models.EmailMessage
	Skipped  int
}

// RawMessage is one fetched message before MIME parsing.
type RawMessage struct {
	UID     uint32
	From    string
	Subject string
	Date    time.Time
	Body    []byte
}
