package models

import (
	"time"
)

type Message struct {
	ID          int64
	AuthorID    int64
	RecipientID int64
	Body        string
	CreatedAt   time.Time

	// Username of the author. Filled only when messages are listed for a recipient
	Author string
}
