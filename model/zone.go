package model

import "time"

// Zone represents a named region grouping related places.
type Zone struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
