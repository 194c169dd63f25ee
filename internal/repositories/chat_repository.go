package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRecord is the persisted chat row. Participants are stored ordered so
// the unordered pair stays unique.
type ChatRecord struct {
	ID        int       `db:"id"`
	User1ID   int       `db:"user1_id"`
	User2ID   int       `db:"user2_id"`
	CreatedAt time.Time `db:"created_at"`
}

// HasParticipant reports whether userID belongs to the chat.
func (c ChatRecord) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateOrGetChat(ctx context.Context, userID, friendID int) (ChatRecord, error)
	GetChat(ctx context.Context, chatID int) (ChatRecord, error)
	ListChatsForViewer(ctx context.Context, viewerID int) ([]models.Chat, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateOrGetChat creates the pair's chat if it does not already exist.
func (r *ChatRepo) CreateOrGetChat(ctx context.Context, userID, friendID int) (ChatRecord, error) {
	if userID == friendID {
		return ChatRecord{}, errors.New("cannot create chat with self")
	}
	participants := []int{userID, friendID}
	sort.Ints(participants)
	user1, user2 := participants[0], participants[1]

	var chat ChatRecord
	query := `SELECT id, user1_id, user2_id, created_at FROM chats WHERE user1_id=$1 AND user2_id=$2`
	if err := r.db.GetContext(ctx, &chat, query, user1, user2); err != nil {
		if err != sql.ErrNoRows {
			return ChatRecord{}, err
		}
		if err := r.db.QueryRowxContext(ctx, `INSERT INTO chats (user1_id, user2_id) VALUES ($1, $2) RETURNING id, user1_id, user2_id, created_at`, user1, user2).
			StructScan(&chat); err != nil {
			return ChatRecord{}, err
		}
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (ChatRecord, error) {
	var chat ChatRecord
	err := r.db.GetContext(ctx, &chat, `SELECT id, user1_id, user2_id, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatRecord{}, ErrChatNotFound
	}
	return chat, err
}

// ListChatsForViewer returns the viewer's chats with the last message and the
// unread counter computed from the viewer's perspective.
func (r *ChatRepo) ListChatsForViewer(ctx context.Context, viewerID int) ([]models.Chat, error) {
	var records []ChatRecord
	err := r.db.SelectContext(ctx, &records, `SELECT id, user1_id, user2_id, created_at FROM chats
        WHERE user1_id=$1 OR user2_id=$1 ORDER BY created_at DESC`, viewerID)
	if err != nil {
		return nil, err
	}

	chats := make([]models.Chat, 0, len(records))
	for _, record := range records {
		chat := models.Chat{
			ID:           record.ID,
			Participants: [2]int{record.User1ID, record.User2ID},
		}

		var last models.Message
		err := r.db.GetContext(ctx, &last, `SELECT id, sender_id, receiver_id, content, read, created_at FROM messages
            WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
            ORDER BY created_at DESC, id DESC LIMIT 1`, record.User1ID, record.User2ID)
		if err == nil {
			chat.LastMessage = &last
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		other := record.User1ID
		if other == viewerID {
			other = record.User2ID
		}
		if err := r.db.GetContext(ctx, &chat.UnreadCount, `SELECT COUNT(*) FROM messages
            WHERE sender_id=$1 AND receiver_id=$2 AND read=FALSE`, other, viewerID); err != nil {
			return nil, err
		}

		chats = append(chats, chat)
	}
	return chats, nil
}
