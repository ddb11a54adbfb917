package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"cite-events/pkg/resources"
)

type Repository interface {
	SaveEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventById(ctx context.Context, id int64) (*Event, error)
	ListEvents(ctx context.Context, includeArchived bool) ([]Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id int64) error
	SetEventArchived(ctx context.Context, id int64, archived bool) error
	JoinEvent(ctx context.Context, eventId int64, username string) error
	LeaveEvent(ctx context.Context, eventId int64, username string) error
	ListUserEvents(ctx context.Context, username string) ([]Event, error)

	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	SetInviteCode(ctx context.Context, username, code string) error
	GetUserByInviteCode(ctx context.Context, code string) (*User, error)
	GetProfile(ctx context.Context, username string) (Profile, error)
	SaveProfile(ctx context.Context, username string, profile Profile) error

	AddFollow(ctx context.Context, follower, followee string) error
	RemoveFollow(ctx context.Context, follower, followee string) error
	ListFollows(ctx context.Context, username string) ([]string, error)
	ListFollowers(ctx context.Context, username string) ([]string, error)

	ListChatMessages(ctx context.Context, eventId int64) ([]ChatMessage, error)
	SaveChatMessage(ctx context.Context, message *ChatMessage) (*ChatMessage, error)
}

type repository struct {
	tracer  trace.Tracer
	metrics *DBMetrics
	pool    resources.DBInstance
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("cite-events/core"),
		metrics: NewDBMetrics(),
		pool:    pool,
	}
}

const eventColumns = `id, name, description, location, venue, address, coordinates,
	 date, time, end_time, crosses_midnight, category, subcategory, languages,
	 is_public, event_type, capacity, image_url, created_by, is_featured,
	 is_archived, template_event_id, target_interests, target_cite_connection,
	 target_reasons, created_at`

const insertEventSQL = `INSERT INTO events (name, description, location, venue, address, coordinates,
	 date, time, end_time, crosses_midnight, category, subcategory, languages,
	 is_public, event_type, capacity, image_url, created_by, is_featured,
	 template_event_id, target_interests, target_cite_connection, target_reasons)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	 $16, $17, $18, $19, $20, $21, $22, $23)
	 RETURNING id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// prefixed qualifies every event column with a table alias for joins.
func prefixed(alias string) string {
	cols := strings.Split(eventColumns, ",")
	for i := range cols {
		cols[i] = alias + strings.TrimSpace(cols[i])
	}

	return strings.Join(cols, ", ")
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		e           Event
		coordinates *string
		languages   string
	)

	err := row.Scan(
		&e.Id, &e.Name, &e.Description, &e.Location, &e.Venue, &e.Address,
		&coordinates, &e.Date, &e.StartTime, &e.EndTime, &e.CrossesMidnight,
		&e.Category, &e.Subcategory, &languages, &e.IsPublic, &e.EventType,
		&e.Capacity, &e.ImageURL, &e.CreatedBy, &e.IsFeatured, &e.IsArchived,
		&e.TemplateEventId, &e.TargetInterests, &e.TargetCiteConnection,
		&e.TargetReasons, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if coordinates != nil && *coordinates != "" {
		var c Coordinates
		if err := json.Unmarshal([]byte(*coordinates), &c); err == nil {
			e.Coordinates = &c
		}
	}

	e.Languages = []string{}
	if languages != "" {
		_ = json.Unmarshal([]byte(languages), &e.Languages)
	}

	e.Participants = []string{}
	e.Crew = []string{}

	return &e, nil
}

func marshalCoordinates(c *Coordinates) *string {
	if c == nil {
		return nil
	}

	data, _ := json.Marshal(c)
	s := string(data)

	return &s
}

func marshalLanguages(languages []string) string {
	if languages == nil {
		languages = []string{}
	}

	data, _ := json.Marshal(languages)

	return string(data)
}

// SaveEvent inserts the event and, when it has a creator, registers that
// creator as the hosting participant in the same transaction.
func (r *repository) SaveEvent(ctx context.Context, event *Event) (*Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SaveEvent")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	saved := *event

	err = tx.QueryRow(ctx, insertEventSQL,
		event.Name, event.Description, event.Location, event.Venue, event.Address,
		marshalCoordinates(event.Coordinates), event.Date, event.StartTime,
		event.EndTime, event.CrossesMidnight, event.Category, event.Subcategory,
		marshalLanguages(event.Languages), event.IsPublic, event.EventType,
		event.Capacity, event.ImageURL, event.CreatedBy, event.IsFeatured,
		event.TemplateEventId, event.TargetInterests, event.TargetCiteConnection,
		event.TargetReasons,
	).Scan(&saved.Id, &saved.CreatedAt)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	if event.CreatedBy != "" {
		_, err = tx.Exec(ctx,
			`INSERT INTO event_participants (event_id, username, is_host)
			 VALUES ($1, $2, TRUE)
			 ON CONFLICT (event_id, username) DO NOTHING`,
			saved.Id, event.CreatedBy)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("failed to register host: %w", err)
		}

		saved.Host = &Host{Name: event.CreatedBy}
	}

	err = tx.Commit(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	saved.Participants = []string{}
	saved.Crew = []string{}

	return &saved, nil
}

func (r *repository) GetEventById(ctx context.Context, id int64) (*Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_event_by_id", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetEventById")
	defer span.End()

	event, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}

		return nil, fmt.Errorf("failed to get event by id: %w", err)
	}

	err = r.attachParticipants(ctx, event)
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (r *repository) ListEvents(ctx context.Context, includeArchived bool) ([]Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_events", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListEvents")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE is_public = TRUE AND (is_archived = FALSE OR $1)
		 ORDER BY id`, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events, err := r.collectEvents(ctx, rows)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *repository) UpdateEvent(ctx context.Context, event *Event) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "update_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.UpdateEvent")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET name = $2, description = $3, location = $4, venue = $5,
		 address = $6, coordinates = $7, date = $8, time = $9, end_time = $10,
		 crosses_midnight = $11, category = $12, subcategory = $13,
		 languages = $14, is_public = $15, event_type = $16, capacity = $17,
		 image_url = $18, is_featured = $19, template_event_id = $20,
		 target_interests = $21, target_cite_connection = $22,
		 target_reasons = $23
		 WHERE id = $1`,
		event.Id, event.Name, event.Description, event.Location, event.Venue,
		event.Address, marshalCoordinates(event.Coordinates), event.Date,
		event.StartTime, event.EndTime, event.CrossesMidnight, event.Category,
		event.Subcategory, marshalLanguages(event.Languages), event.IsPublic,
		event.EventType, event.Capacity, event.ImageURL, event.IsFeatured,
		event.TemplateEventId, event.TargetInterests, event.TargetCiteConnection,
		event.TargetReasons)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = ErrEventNotFound
		return err
	}

	return nil
}

func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "delete_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.DeleteEvent")
	defer span.End()

	// Participants and chat messages go with the event via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = ErrEventNotFound
		return err
	}

	return nil
}

func (r *repository) SetEventArchived(ctx context.Context, id int64, archived bool) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "set_event_archived", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SetEventArchived")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET is_archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		return fmt.Errorf("failed to set archived flag: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = ErrEventNotFound
		return err
	}

	return nil
}

// JoinEvent admits the user only while the participant count is below
// capacity. The guard lives in the statement itself so concurrent joins
// cannot over-admit.
func (r *repository) JoinEvent(ctx context.Context, eventId int64, username string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "join_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.JoinEvent")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO event_participants (event_id, username, is_host)
		 SELECT e.id, $2, FALSE FROM events e
		 WHERE e.id = $1
		   AND (e.capacity IS NULL OR
		        (SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id) < e.capacity)
		 ON CONFLICT (event_id, username) DO NOTHING`,
		eventId, username)
	if err != nil {
		return fmt.Errorf("failed to join event: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing inserted: already a participant (fine), event missing, or full.
	var joined bool

	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_participants WHERE event_id = $1 AND username = $2)`,
		eventId, username).Scan(&joined)
	if err != nil {
		return fmt.Errorf("failed to check participant: %w", err)
	}

	if joined {
		return nil
	}

	var exists bool

	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, eventId).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}

	if !exists {
		err = ErrEventNotFound
		return err
	}

	err = ErrEventFull

	return err
}

func (r *repository) LeaveEvent(ctx context.Context, eventId int64, username string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "leave_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.LeaveEvent")
	defer span.End()

	_, err = r.pool.Exec(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND username = $2`,
		eventId, username)
	if err != nil {
		return fmt.Errorf("failed to leave event: %w", err)
	}

	return nil
}

func (r *repository) ListUserEvents(ctx context.Context, username string) ([]Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_user_events", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListUserEvents")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT `+prefixed("e.")+` FROM events e
		 JOIN event_participants ep ON e.id = ep.event_id
		 WHERE lower(ep.username) = lower($1)
		 ORDER BY e.id`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list user events: %w", err)
	}
	defer rows.Close()

	events, err := r.collectEvents(ctx, rows)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *repository) collectEvents(ctx context.Context, rows pgx.Rows) ([]Event, error) {
	events := []Event{}

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	for i := range events {
		if err := r.attachParticipants(ctx, &events[i]); err != nil {
			return nil, err
		}
	}

	return events, nil
}

func (r *repository) attachParticipants(ctx context.Context, event *Event) error {
	rows, err := r.pool.Query(ctx,
		`SELECT username, is_host FROM event_participants
		 WHERE event_id = $1 ORDER BY joined_at`, event.Id)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	event.Participants = []string{}
	event.Crew = []string{}
	event.Host = nil

	for rows.Next() {
		var (
			username string
			isHost   bool
		)

		if err := rows.Scan(&username, &isHost); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}

		if isHost {
			event.Host = &Host{Name: username}
		} else {
			event.Participants = append(event.Participants, username)
			event.Crew = append(event.Crew, username)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read participants: %w", err)
	}

	return nil
}

/*

 */

type DBMetrics struct {
	qTotal   metric.Int64Counter
	qErrors  metric.Int64Counter
	qLatency metric.Float64Histogram
}

func NewDBMetrics() *DBMetrics {
	meter := otel.Meter("cite-events/db")

	qTotal, _ := meter.Int64Counter("db.query.total")
	qErrors, _ := meter.Int64Counter("db.query.errors.total")
	qLatency, _ := meter.Float64Histogram("db.query.duration.ms")

	return &DBMetrics{qTotal: qTotal, qErrors: qErrors, qLatency: qLatency}
}

func (m *DBMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgres"),
		attribute.String("db.operation", op),
	}

	m.qTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.qLatency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil {
		m.qErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
