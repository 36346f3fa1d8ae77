package intelinfo

import (
	"encoding/json"
	"fmt"
	"io"
)

// AnnouncementKind describes how an announcement's content field is
// interpreted: inline text, an external link, or a media reference.
type AnnouncementKind string

const (
	AnnouncementText  AnnouncementKind = "text"
	AnnouncementLink  AnnouncementKind = "link"
	AnnouncementImage AnnouncementKind = "image"
	AnnouncementVideo AnnouncementKind = "video"
)

// Announcement is a board entry created by an admin and broadcast to all
// connected clients. CreatedAt is unix seconds, as sent on the wire.
type Announcement struct {
	ID        int64            `json:"id"`
	Kind      AnnouncementKind `json:"kind"`
	Title     string           `json:"title,omitempty"`
	Content   string           `json:"content"`
	CreatedAt int64            `json:"created_at"`
}

// Message is a contact form submission. Creation is public; reading the
// inbox requires an admin token.
type Message struct {
	ID           int64  `json:"id"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	CreatedAt    int64  `json:"created_at"`
}

// MessageInput is the payload for creating a contact message.
type MessageInput struct {
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
}

// LoginResponse carries the opaque session token issued by the login
// endpoint. The token has no client-side expiry handling; the server is
// solely responsible for validity.
type LoginResponse struct {
	Token string `json:"token"`
}

// EventType discriminates push events delivered over the live channel.
type EventType string

const (
	EventNewAnnouncement    EventType = "new_announcement"
	EventDeleteAnnouncement EventType = "delete_announcement"
)

// PushEvent is a server-originated frame from the live channel. The payload
// shape depends on Type, so it is kept raw and decoded through the typed
// accessors.
type PushEvent struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Announcement decodes the payload of a new_announcement event.
func (e *PushEvent) Announcement() (*Announcement, error) {
	if e.Type != EventNewAnnouncement {
		return nil, fmt.Errorf("event type is %q, not %q", e.Type, EventNewAnnouncement)
	}
	var a Announcement
	if err := json.Unmarshal(e.Payload, &a); err != nil {
		return nil, fmt.Errorf("failed to decode announcement payload: %w", err)
	}
	return &a, nil
}

// DeletedID decodes the payload of a delete_announcement event.
func (e *PushEvent) DeletedID() (int64, error) {
	if e.Type != EventDeleteAnnouncement {
		return 0, fmt.Errorf("event type is %q, not %q", e.Type, EventDeleteAnnouncement)
	}
	var ref struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(e.Payload, &ref); err != nil {
		return 0, fmt.Errorf("failed to decode delete payload: %w", err)
	}
	return ref.ID, nil
}

// NewAnnouncementEvent builds a new_announcement push event.
func NewAnnouncementEvent(a Announcement) PushEvent {
	payload, _ := json.Marshal(a)
	return PushEvent{Type: EventNewAnnouncement, Payload: payload}
}

// DeleteAnnouncementEvent builds a delete_announcement push event.
func DeleteAnnouncementEvent(id int64) PushEvent {
	payload, _ := json.Marshal(struct {
		ID int64 `json:"id"`
	}{ID: id})
	return PushEvent{Type: EventDeleteAnnouncement, Payload: payload}
}

// IngestInput lists documents for retrieval ingestion. Absent slices are
// marshalled as null, which the backend expects.
type IngestInput struct {
	Texts []string `json:"texts"`
	URLs  []string `json:"urls"`
}

// ChatResponse is the answer returned by the retrieval chat endpoint.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// FormFile is a file attached to a multipart request, such as the media of
// an image or video announcement.
type FormFile struct {
	Name   string
	Reader io.Reader
}
