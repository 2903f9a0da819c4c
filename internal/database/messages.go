package database

import (
	"context"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

// AppendMessage inserts a message with the next per-conversation sequence
// number. The sequence is assigned inside the insert transaction, which
// serializes concurrent appends to the same conversation.
func (db *DB) AppendMessage(ctx context.Context, message *models.Message) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTransient("begin append message", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var seq int64
	querySeq := `SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?`
	if err := tx.QueryRowContext(ctx, querySeq, message.ConversationID).Scan(&seq); err != nil {
		return wrapTransient("next message seq", err)
	}

	now := time.Now()
	queryInsert := `INSERT INTO messages (conversation_id, sender_id, sender_role, text, seq, created_at)
                    VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, queryInsert,
		message.ConversationID,
		message.SenderID,
		message.SenderRole,
		message.Text,
		seq,
		now,
	)
	if err != nil {
		return wrapTransient("insert message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return wrapTransient("insert message id", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapTransient("commit message", err)
	}

	message.ID = id
	message.Seq = seq
	message.CreatedAt = now
	return nil
}

// GetConversationMessages returns the full history of one conversation in
// append order.
func (db *DB) GetConversationMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	query := `SELECT id, conversation_id, sender_id, sender_role, text, seq, created_at
              FROM messages WHERE conversation_id = ? ORDER BY seq ASC`
	rows, err := db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, wrapTransient("query messages", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m := &models.Message{}
		err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.SenderRole,
			&m.Text, &m.Seq, &m.CreatedAt,
		)
		if err != nil {
			return nil, wrapTransient("scan message", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransient("iterate messages", err)
	}
	return messages, nil
}

// GetConversations returns one entry per conversation with its latest
// message, newest conversations first. Used by the admin inbox.
func (db *DB) GetConversations(ctx context.Context) ([]*models.Conversation, error) {
	query := `SELECT m.conversation_id, COALESCE(u.name, ''), m.text, m.seq, m.created_at
              FROM messages m
              JOIN (SELECT conversation_id, MAX(seq) AS max_seq FROM messages GROUP BY conversation_id) last
                ON last.conversation_id = m.conversation_id AND last.max_seq = m.seq
              LEFT JOIN users u ON u.id = m.conversation_id
              ORDER BY m.created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapTransient("query conversations", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		c := &models.Conversation{}
		if err := rows.Scan(&c.UserID, &c.UserName, &c.LastMessage, &c.LastSeq, &c.LastAt); err != nil {
			return nil, wrapTransient("scan conversation", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransient("iterate conversations", err)
	}
	return conversations, nil
}
