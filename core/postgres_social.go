package core

import (
	"context"
	"fmt"
	"time"
)

func (r *repository) AddFollow(ctx context.Context, follower, followee string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "add_follow", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.AddFollow")
	defer span.End()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO follows (follower, followee) VALUES ($1, $2)
		 ON CONFLICT (follower, followee) DO NOTHING`,
		follower, followee)
	if err != nil {
		return fmt.Errorf("failed to add follow: %w", err)
	}

	return nil
}

func (r *repository) RemoveFollow(ctx context.Context, follower, followee string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "remove_follow", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.RemoveFollow")
	defer span.End()

	_, err = r.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower = $1 AND followee = $2`,
		follower, followee)
	if err != nil {
		return fmt.Errorf("failed to remove follow: %w", err)
	}

	return nil
}

func (r *repository) ListFollows(ctx context.Context, username string) ([]string, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_follows", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListFollows")
	defer span.End()

	names, err := r.collectUsernames(ctx,
		`SELECT followee FROM follows WHERE lower(follower) = lower($1) ORDER BY created_at`,
		username)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}

	return names, nil
}

func (r *repository) ListFollowers(ctx context.Context, username string) ([]string, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_followers", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListFollowers")
	defer span.End()

	names, err := r.collectUsernames(ctx,
		`SELECT follower FROM follows WHERE lower(followee) = lower($1) ORDER BY created_at`,
		username)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}

	return names, nil
}

func (r *repository) collectUsernames(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}

	for rows.Next() {
		var name string

		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}

func (r *repository) ListChatMessages(ctx context.Context, eventId int64) ([]ChatMessage, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_chat_messages", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListChatMessages")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, username, message, sent_at FROM chat_messages
		 WHERE event_id = $1 ORDER BY sent_at ASC`, eventId)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}

	for rows.Next() {
		var message ChatMessage

		err = rows.Scan(&message.Id, &message.EventId, &message.Username,
			&message.Message, &message.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}

		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat messages: %w", err)
	}

	return messages, nil
}

func (r *repository) SaveChatMessage(ctx context.Context, message *ChatMessage) (*ChatMessage, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_chat_message", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SaveChatMessage")
	defer span.End()

	saved := *message

	err = r.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (event_id, username, message)
		 VALUES ($1, $2, $3) RETURNING id, sent_at`,
		message.EventId, message.Username, message.Message).Scan(&saved.Id, &saved.SentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}

	return &saved, nil
}
