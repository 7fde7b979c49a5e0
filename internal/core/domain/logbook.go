package domain

import "time"

// LogEntry is one bitácora entry about a child's progress.
type LogEntry struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	AuthorID    string    `json:"author_id"`
}

// LogEntryPatch carries the fields of a partial log entry update.
type LogEntryPatch struct {
	Date        *time.Time
	Description *string
	PhotoURL    *string
	VideoURL    *string
}

func (p LogEntryPatch) Apply(e *LogEntry) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.PhotoURL != nil {
		e.PhotoURL = *p.PhotoURL
	}
	if p.VideoURL != nil {
		e.VideoURL = *p.VideoURL
	}
}
