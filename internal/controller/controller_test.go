package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger/internal/messaging"
	"messenger/internal/mocks"
	"messenger/internal/models"
)

func newSeededController() *Controller {
	svc := messaging.NewMock(messaging.SeedStore(), 0)
	return New(svc, svc, 1)
}

func TestLoadChats(t *testing.T) {
	c := newSeededController()

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()

	state := c.Snapshot()
	assert.Len(t, state.Chats, 2)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Err)
}

func TestLoadChatsFailureKeepsPreviousChats(t *testing.T) {
	svc := new(mocks.MessagingServiceMock)
	dir := new(mocks.DirectoryMock)
	c := New(svc, dir, 1)

	chats := []models.Chat{{ID: 5, Participants: [2]int{1, 2}}}
	svc.On("ListChats", mock.Anything, 1).Return(chats, nil).Once()
	dir.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "admin"}, nil)

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()

	svc.On("ListChats", mock.Anything, 1).Return(nil, assert.AnError).Once()
	require.Error(t, c.LoadChats(context.Background()))

	state := c.Snapshot()
	assert.Equal(t, chats, state.Chats)
	assert.Equal(t, MsgChatsUnavailable, state.Err)
	assert.False(t, state.IsLoading)
	svc.AssertExpectations(t)
}

// Selecting a chat with an unread incoming message marks it read and the
// silently refreshed chat list shows a zero counter.
func TestSelectChatMarksIncomingRead(t *testing.T) {
	c := newSeededController()

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()
	require.NoError(t, c.SelectChat(context.Background(), 1))
	c.Wait()

	state := c.Snapshot()
	assert.Equal(t, 1, state.SelectedChatID)
	require.NotNil(t, state.SelectedParticipant)
	assert.Equal(t, "admin", state.SelectedParticipant.Username)
	require.Len(t, state.Messages, 5)

	for _, chat := range state.Chats {
		if chat.ID == 1 {
			assert.Equal(t, 0, chat.UnreadCount)
		}
	}

	// The read-marking happens against the data source; re-fetch to see it.
	msgs, err := c.svc.ListMessages(context.Background(), 1)
	require.NoError(t, err)
	for _, msg := range msgs {
		if msg.Receiver == 1 {
			assert.True(t, msg.Read)
		}
	}
}

func TestSendMessageAppends(t *testing.T) {
	c := newSeededController()

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()
	require.NoError(t, c.SelectChat(context.Background(), 1))
	c.Wait()

	require.NoError(t, c.SendMessage(context.Background(), "see you monday"))
	c.Wait()

	state := c.Snapshot()
	last := state.Messages[len(state.Messages)-1]
	assert.Equal(t, "see you monday", last.Content)
	assert.Equal(t, 1, last.Sender)
	assert.Equal(t, 2, last.Receiver)
	assert.False(t, state.IsSending)
}

func TestSendBlankContentMakesNoCalls(t *testing.T) {
	svc := new(mocks.MessagingServiceMock)
	dir := new(mocks.DirectoryMock)
	c := New(svc, dir, 1)

	err := c.SendMessage(context.Background(), "   \t\n")
	assert.ErrorIs(t, err, ErrBlankContent)

	state := c.Snapshot()
	assert.Empty(t, state.Messages)
	assert.Empty(t, state.Err)
	svc.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendWithoutSelection(t *testing.T) {
	c := New(new(mocks.MessagingServiceMock), new(mocks.DirectoryMock), 1)

	err := c.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSendFailureLeavesMessagesUntouched(t *testing.T) {
	svc := new(mocks.MessagingServiceMock)
	dir := new(mocks.DirectoryMock)
	c := New(svc, dir, 1)

	chats := []models.Chat{{ID: 5, Participants: [2]int{1, 2}}}
	svc.On("ListChats", mock.Anything, 1).Return(chats, nil)
	svc.On("ListMessages", mock.Anything, 5).Return([]models.Message{
		{ID: 1, Sender: 1, Receiver: 2, Content: "earlier", Read: true},
	}, nil)
	dir.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "admin"}, nil)

	require.NoError(t, c.LoadChats(context.Background()))
	require.NoError(t, c.SelectChat(context.Background(), 5))
	c.Wait()

	svc.On("SendMessage", mock.Anything, 1, 2, "boom").Return(models.Message{}, assert.AnError).Once()
	require.Error(t, c.SendMessage(context.Background(), "boom"))

	state := c.Snapshot()
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "earlier", state.Messages[0].Content)
	assert.Equal(t, MsgSendFailed, state.Err)
	assert.False(t, state.IsSending)
}

func TestFilteredChats(t *testing.T) {
	c := newSeededController()

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()

	c.SetSearchQuery("adm")
	filtered := c.FilteredChats()
	require.Len(t, filtered, 1)
	assert.Equal(t, 1, filtered[0].ID)

	c.SetSearchQuery("Project Developer")
	filtered = c.FilteredChats()
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].ID)

	c.SetSearchQuery("zzz")
	assert.Empty(t, c.FilteredChats())

	c.SetSearchQuery("")
	assert.Len(t, c.FilteredChats(), 2)
}

func TestStaleLoadDiscarded(t *testing.T) {
	svc := new(mocks.MessagingServiceMock)
	dir := new(mocks.DirectoryMock)
	c := New(svc, dir, 1)

	chats := []models.Chat{
		{ID: 1, Participants: [2]int{1, 2}},
		{ID: 2, Participants: [2]int{1, 3}},
	}
	svc.On("ListChats", mock.Anything, 1).Return(chats, nil)
	dir.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "admin"}, nil)
	dir.On("GetUser", mock.Anything, 3).Return(models.User{ID: 3, Username: "developer"}, nil)

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()

	started := make(chan struct{})
	release := make(chan struct{})
	svc.On("ListMessages", mock.Anything, 1).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.Message{{ID: 10, Sender: 2, Receiver: 1, Content: "old", Read: true}}, nil)
	svc.On("ListMessages", mock.Anything, 2).Return([]models.Message{{ID: 11, Sender: 1, Receiver: 3, Content: "new", Read: true}}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.SelectChat(context.Background(), 1)
	}()
	<-started

	require.NoError(t, c.SelectChat(context.Background(), 2))
	close(release)
	<-done
	c.Wait()

	state := c.Snapshot()
	assert.Equal(t, 2, state.SelectedChatID)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "new", state.Messages[0].Content)
	require.NotNil(t, state.SelectedParticipant)
	assert.Equal(t, "developer", state.SelectedParticipant.Username)
}

func TestPollUnread(t *testing.T) {
	svc := new(mocks.MessagingServiceMock)
	dir := new(mocks.DirectoryMock)
	c := New(svc, dir, 1)

	svc.On("ListChats", mock.Anything, 1).Return([]models.Chat{
		{ID: 1, Participants: [2]int{1, 2}, UnreadCount: 2},
		{ID: 2, Participants: [2]int{1, 3}, UnreadCount: 3},
	}, nil)

	totals := make(chan int, 1)
	ctx, cancel := context.WithCancel(context.Background())
	c.PollUnread(ctx, 10*time.Millisecond, func(total int) {
		select {
		case totals <- total:
		default:
		}
	})

	select {
	case total := <-totals:
		assert.Equal(t, 5, total)
	case <-time.After(2 * time.Second):
		t.Fatal("no unread total reported")
	}
	cancel()
	c.Wait()
}

func TestClearSelection(t *testing.T) {
	c := newSeededController()

	require.NoError(t, c.LoadChats(context.Background()))
	c.Wait()
	require.NoError(t, c.SelectChat(context.Background(), 1))
	c.Wait()

	c.ClearSelection()
	state := c.Snapshot()
	assert.Zero(t, state.SelectedChatID)
	assert.Nil(t, state.SelectedParticipant)
	assert.Empty(t, state.Messages)
}
