package chat

import (
	"time"

	"github.com/google/uuid"
)

// FileAttachment describes a file carried by a message.
type FileAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Message is one chat log entry. Messages are immutable once created; the log
// is append-only and insertion order is display order.
type Message struct {
	ID        uuid.UUID       `json:"id"`
	Text      string          `json:"text"`
	IsUser    bool            `json:"is_user"`
	Timestamp time.Time       `json:"timestamp"`
	Image     string          `json:"image,omitempty"`
	File      *FileAttachment `json:"file,omitempty"`
}

// State is the mutable chat state of one session. Recording is true only
// between start-capture and stop-capture; Processing only between stop-capture
// and its delayed effect.
type State struct {
	Messages   []Message `json:"messages"`
	Recording  bool      `json:"recording"`
	Processing bool      `json:"processing"`
}

// View identifies the single active panel. Exactly one view is active at a
// time; selecting any view clears the previous one.
type View string

const (
	ViewChat          View = "chat"
	ViewHistory       View = "history"
	ViewCertificate   View = "certificate"
	ViewSendToDoctor  View = "send_to_doctor"
	ViewSymptomDetail View = "symptom_detail"
)

// ViewSelection is the active view plus, for the symptom-detail view, the
// selected category.
type ViewSelection struct {
	View       View   `json:"view"`
	CategoryID string `json:"category_id,omitempty"`
}
