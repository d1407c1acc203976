package event

import (
	"crypto/sha1"
	"fmt"
)

// Sentinels used when a listing does not expose a field
const (
	NoTitle       = "No Title"
	NoDate        = "No Date"
	Unknown       = "Unknown"
	NoDescription = "No Description Available"
	Free          = "Free"
	NoImage       = "No Image"
)

// Store column names. The remote table is addressed by name, not position.
const (
	FieldTitle       = "Title"
	FieldDateTime    = "Date & Time"
	FieldLocation    = "Location"
	FieldCity        = "City"
	FieldEventURL    = "Event URL"
	FieldDescription = "Description"
	FieldCategory    = "Category"
	FieldPrice       = "Price"
	FieldEventType   = "Event Type"
	FieldTags        = "Tags"
	FieldImageURL    = "Image URL"
)

// FieldNames lists every store column in write order
var FieldNames = []string{
	FieldTitle,
	FieldDateTime,
	FieldLocation,
	FieldCity,
	FieldEventURL,
	FieldDescription,
	FieldCategory,
	FieldPrice,
	FieldEventType,
	FieldTags,
	FieldImageURL,
}

// EventType is the modality of an event
type EventType string

const (
	Online   EventType = "Online"
	InPerson EventType = "In-Person"
)

// Event is a normalized listing ready to be written to the store
type Event struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	DateTime    string    `json:"date_time"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	EventURL    string    `json:"event_url"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	EventType   EventType `json:"event_type"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"image_url"`
}

// GenerateID creates a deterministic ID from the source, link and title of a listing.
// It identifies an event in logs and output; the pipeline never deduplicates on it.
func GenerateID(source, eventURL, title string) string {
	h := sha1.New()
	h.Write([]byte(source + "|" + eventURL + "|" + title))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Fields returns the event keyed by store column name
func (e Event) Fields() map[string]interface{} {
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)

	return map[string]interface{}{
		FieldTitle:       e.Title,
		FieldDateTime:    e.DateTime,
		FieldLocation:    e.Location,
		FieldCity:        e.City,
		FieldEventURL:    e.EventURL,
		FieldDescription: e.Description,
		FieldCategory:    e.Category,
		FieldPrice:       e.Price,
		FieldEventType:   string(e.EventType),
		FieldTags:        tags,
		FieldImageURL:    e.ImageURL,
	}
}
