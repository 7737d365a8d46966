package db

import (
	"fmt"
	"time"
)

// Message represents a persisted transcript entry
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Append stores a message at the end of the transcript
func (db *DB) Append(sender, text string) error {
	_, err := db.conn.Exec(
		"INSERT INTO messages (sender, text, created_at) VALUES (?, ?, ?)",
		sender, text, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages retrieves the transcript in chronological order
func (db *DB) ListMessages() ([]*Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, sender, text, created_at FROM messages ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// CountMessages returns the number of persisted messages
func (db *DB) CountMessages() (int64, error) {
	var count int64
	err := db.conn.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// TrimHistory deletes the oldest messages, keeping only keepCount
func (db *DB) TrimHistory(keepCount int) (int64, error) {
	result, err := db.conn.Exec(`
		DELETE FROM messages
		WHERE id NOT IN (
			SELECT id FROM messages
			ORDER BY id DESC
			LIMIT ?
		)
	`, keepCount)
	if err != nil {
		return 0, fmt.Errorf("failed to trim history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ClearHistory deletes the whole transcript
func (db *DB) ClearHistory() error {
	_, err := db.conn.Exec("DELETE FROM messages")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
