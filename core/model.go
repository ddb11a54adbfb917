package core

import "time"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Host struct {
	Name string `json:"name"`
}

// Event is the stored shape and the API response shape. Persisted columns are
// snake_case; the API exposes camelCase, which is what the json tags carry.
// StartTime and EndTime are times of day ("HH:MM"); an event whose end time
// precedes its start runs into the following calendar day.
type Event struct {
	Id                   int64        `json:"id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	Location             string       `json:"location"`
	Venue                string       `json:"venue"`
	Address              string       `json:"address"`
	Coordinates          *Coordinates `json:"coordinates,omitempty"`
	Date                 string       `json:"date"`
	StartTime            string       `json:"time"`
	EndTime              string       `json:"endTime,omitempty"`
	CrossesMidnight      bool         `json:"crossesMidnight"`
	Category             string       `json:"category"`
	Subcategory          string       `json:"subcategory,omitempty"`
	Languages            []string     `json:"languages"`
	IsPublic             bool         `json:"isPublic"`
	EventType            string       `json:"type"`
	Capacity             *int         `json:"capacity,omitempty"`
	ImageURL             string       `json:"imageUrl"`
	CreatedBy            string       `json:"createdBy,omitempty"`
	IsFeatured           bool         `json:"isFeatured"`
	IsArchived           bool         `json:"isArchived"`
	TemplateEventId      *int64       `json:"templateEventId,omitempty"`
	TargetInterests      *string      `json:"targetInterests,omitempty"`
	TargetCiteConnection *string      `json:"targetCiteConnection,omitempty"`
	TargetReasons        *string      `json:"targetReasons,omitempty"`
	CreatedAt            time.Time    `json:"createdAt,omitempty"`

	// Filled from event_participants on reads.
	Host         *Host    `json:"host,omitempty"`
	Participants []string `json:"participants"`
	Crew         []string `json:"crew"`
}

// EventRequest is the snake_case creation/update payload.
type EventRequest struct {
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	Location             string       `json:"location"`
	Venue                string       `json:"venue"`
	Address              string       `json:"address"`
	Coordinates          *Coordinates `json:"coordinates"`
	Date                 string       `json:"date"`
	StartTime            string       `json:"time"`
	EndTime              string       `json:"end_time"`
	Category             string       `json:"category"`
	Subcategory          string       `json:"subcategory"`
	Languages            []string     `json:"languages"`
	IsPublic             *bool        `json:"is_public"`
	EventType            string       `json:"event_type"`
	Capacity             *int         `json:"capacity"`
	ImageURL             string       `json:"image_url"`
	CreatedBy            string       `json:"created_by"`
	IsFeatured           bool         `json:"is_featured"`
	TemplateEventId      *int64       `json:"template_event_id"`
	TargetInterests      *string      `json:"target_interests"`
	TargetCiteConnection *string      `json:"target_cite_connection"`
	TargetReasons        *string      `json:"target_reasons"`
}

// Event converts the request into the stored shape. Visibility defaults to
// public when the field is omitted, and a missing event type falls back to
// "custom", matching what clients have historically relied on.
func (r EventRequest) Event() Event {
	isPublic := true
	if r.IsPublic != nil {
		isPublic = *r.IsPublic
	}

	eventType := r.EventType
	if eventType == "" {
		eventType = "custom"
	}

	languages := r.Languages
	if languages == nil {
		languages = []string{}
	}

	return Event{
		Name:                 r.Name,
		Description:          r.Description,
		Location:             r.Location,
		Venue:                r.Venue,
		Address:              r.Address,
		Coordinates:          r.Coordinates,
		Date:                 r.Date,
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		Category:             r.Category,
		Subcategory:          r.Subcategory,
		Languages:            languages,
		IsPublic:             isPublic,
		EventType:            eventType,
		Capacity:             r.Capacity,
		ImageURL:             r.ImageURL,
		CreatedBy:            r.CreatedBy,
		IsFeatured:           r.IsFeatured,
		TemplateEventId:      r.TemplateEventId,
		TargetInterests:      r.TargetInterests,
		TargetCiteConnection: r.TargetCiteConnection,
		TargetReasons:        r.TargetReasons,
	}
}

type User struct {
	Id           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	InviteCode   string `json:"inviteCode,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Profile is a free-form user profile document. Stored as JSON, returned as
// received with the username merged in.
type Profile map[string]any

type FollowRequest struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

type ChatMessage struct {
	Id       int64     `json:"id,omitempty"`
	EventId  int64     `json:"-"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"timestamp"`
}

type ChatRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type JoinRequest struct {
	Username string `json:"username"`
}
