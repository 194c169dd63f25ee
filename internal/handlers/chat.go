package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger/internal/observability"
	"messenger/internal/rabbitmq"
	"messenger/internal/repositories"
)

// ChatHandler serves the messaging wire surface the client's remote data
// source speaks: chat listing, message listing, send, and mark-read.
type ChatHandler struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	publisher   rabbitmq.Publisher
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, publisher rabbitmq.Publisher) *ChatHandler {
	return &ChatHandler{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// ListChats returns the authenticated viewer's chats with unread counters.
// The userId query parameter must match the token's user.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	if param := c.Query("userId"); param != "" {
		requested, err := strconv.Atoi(param)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if requested != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot list another user's chats"})
			return
		}
	}

	chats, err := h.chatRepo.ListChatsForViewer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}
	c.JSON(http.StatusOK, chats)
}

// GetChatMessages returns all messages of a chat in ascending order.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	chat, err := h.chatRepo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat not found"})
		return
	}
	if !chat.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
		return
	}

	msgs, err := h.messageRepo.ListBetween(c.Request.Context(), chat.User1ID, chat.User2ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// PostMessage stores a new message, creating the pair's chat on demand.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Sender   int    `json:"sender" binding:"required"`
		Receiver int    `json:"receiver" binding:"required"`
		Content  string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if req.Sender != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "sender must be the authenticated user"})
		return
	}
	if req.Receiver == req.Sender {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}

	if _, err := h.userRepo.GetUser(c.Request.Context(), req.Receiver); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "receiver not found"})
		return
	}

	if _, err := h.chatRepo.CreateOrGetChat(c.Request.Context(), req.Sender, req.Receiver); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), req.Sender, req.Receiver, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessageSent()
	if err := h.publisher.Publish(c.Request.Context(), "message.sent", rabbitmq.MessageEvent{Type: "message.sent", Message: msg}); err != nil {
		observability.IncAMQPPublishError()
		log.Printf("publish message.sent: %v", err)
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkMessageRead flips a message's read flag. Only the receiver may do so.
func (h *ChatHandler) MarkMessageRead(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.Receiver != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the receiver can mark a message read"})
		return
	}

	updated, err := h.messageRepo.MarkRead(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not mark message read"})
		return
	}

	observability.IncMessageRead()
	if err := h.publisher.Publish(c.Request.Context(), "message.read", rabbitmq.MessageEvent{Type: "message.read", Message: updated}); err != nil {
		observability.IncAMQPPublishError()
		log.Printf("publish message.read: %v", err)
	}

	c.JSON(http.StatusOK, updated)
}
