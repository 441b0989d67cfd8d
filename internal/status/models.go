package status

import "time"

// Status is a single incident or announcement post.
// A Status is stored whole under one key; there are no partial records.
type Status struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Date  time.Time `json:"date"`
}

// Param carries the operator-supplied fields for create and update.
type Param struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
