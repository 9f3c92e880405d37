package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consistai-backend/internal/models"
	"consistai-backend/internal/repository"
)

type stubResponder struct {
	top     *models.RankedResponseItem
	err     error
	history []models.ChatMessage
	input   models.UserMessagePayload
	lang    string
	calls   int

	// inspect runs while the turn is in progress
	inspect func()
}

func (r *stubResponder) GetRankedResponse(ctx context.Context, input models.UserMessagePayload, history []models.ChatMessage, lang string) (*models.RankedResponseItem, error) {
	r.calls++
	r.input = input
	r.history = history
	r.lang = lang
	if r.inspect != nil {
		r.inspect()
	}
	return r.top, r.err
}

type recordingPublisher struct {
	statuses []models.SessionStatus
}

func (p *recordingPublisher) PublishSession(ctx context.Context, s models.Session) {
	p.statuses = append(p.statuses, s.Status)
}

func newChatFixture(t *testing.T, responder *stubResponder) (*ChatService, *recordingPublisher, models.Session) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewChatService(repository.NewSessionRepo(time.Hour), responder, pub)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	return svc, pub, session
}

func TestChatService_CreateSessionHasWelcome(t *testing.T) {
	_, _, session := newChatFixture(t, &stubResponder{})

	require.Len(t, session.Messages, 1)
	assert.Equal(t, models.RoleAssistant, session.Messages[0].Role)
	assert.Equal(t, welcomeMessage, session.Messages[0].Content.Text)
	assert.Equal(t, models.SessionIdle, session.Status)
}

func TestChatService_SendMessageSuccess(t *testing.T) {
	responder := &stubResponder{top: &models.RankedResponseItem{ModelName: "Gemma", ResponseText: "4", Accuracy: 0.95}}
	svc, pub, session := newChatFixture(t, responder)

	resp, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "What's 2+2?", InputLanguage: "en-US"})
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeSuccess, resp.Outcome)
	assert.Nil(t, resp.Notice)
	assert.Equal(t, models.MessageTypeSingleModelResponse, resp.Reply.Type)
	require.NotNil(t, resp.Reply.Content.Ranked)
	assert.Equal(t, "Gemma", resp.Reply.Content.Ranked.ModelName)

	assert.Equal(t, models.SessionIdle, resp.Session.Status)
	assert.Len(t, resp.Session.Messages, 3)
	assert.Equal(t, "en-US", responder.lang)

	// history handed to the responder excludes the turn being answered
	require.Len(t, responder.history, 1)
	assert.Equal(t, welcomeMessage, responder.history[0].Content.Text)

	assert.Equal(t, []models.SessionStatus{models.SessionAwaitingResponse, models.SessionIdle}, pub.statuses)
}

func TestChatService_SendMessageNoSuitableResponse(t *testing.T) {
	svc, _, session := newChatFixture(t, &stubResponder{})

	resp, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeNoSuitableResponse, resp.Outcome)
	assert.Equal(t, models.MessageTypeText, resp.Reply.Type)
	assert.Equal(t, noResponseMessage, resp.Reply.Content.Text)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, "No Response", resp.Notice.Title)
}

func TestChatService_SendMessageBackendErrorBecomesErrorMessage(t *testing.T) {
	svc, _, session := newChatFixture(t, &stubResponder{err: errors.New("AI interaction failed: socket closed")})

	resp, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeError, resp.Outcome)
	assert.Equal(t, models.MessageTypeError, resp.Reply.Type)
	assert.Equal(t, genericFailedMessage, resp.Reply.Content.Text)
	assert.Equal(t, models.SessionIdle, resp.Session.Status)
}

func TestChatService_ResponderPanicCompletesTurn(t *testing.T) {
	responder := &stubResponder{top: &models.RankedResponseItem{ModelName: "Qwen", ResponseText: "ok", Accuracy: 0.7}}
	responder.inspect = func() {
		if responder.calls == 1 {
			panic("nil pointer in model client")
		}
	}
	svc, pub, session := newChatFixture(t, responder)

	resp, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeError, resp.Outcome)
	assert.Equal(t, models.MessageTypeError, resp.Reply.Type)
	assert.Equal(t, genericFailedMessage, resp.Reply.Content.Text)
	assert.Equal(t, models.SessionIdle, resp.Session.Status)
	assert.Equal(t, []models.SessionStatus{models.SessionAwaitingResponse, models.SessionIdle}, pub.statuses)

	// the session accepts further turns and resets
	resp, err = svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "again"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSuccess, resp.Outcome)

	_, _, err = svc.ResetSession(context.Background(), session.ID, ResetNewChat)
	assert.NoError(t, err)
}

func TestChatService_SendMessageConfigurationError(t *testing.T) {
	svc, _, session := newChatFixture(t, &stubResponder{err: &ConfigurationError{Message: missingAPIKeyMessage}})

	resp, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeError, resp.Outcome)
	assert.Equal(t, missingAPIKeyMessage, resp.Reply.Content.Text)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, "destructive", resp.Notice.Variant)
}

func TestChatService_SendMessageValidation(t *testing.T) {
	responder := &stubResponder{}
	svc, _, session := newChatFixture(t, responder)

	_, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "   "})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "text")

	_, err = svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "see", ImageDataURI: "data:image/png;base64,%%%"})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "image_data_uri")

	got, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1, "rejected input must not touch the conversation")
	assert.Zero(t, responder.calls)
}

func TestChatService_ImageOnlyMessage(t *testing.T) {
	responder := &stubResponder{}
	svc, _, session := newChatFixture(t, responder)
	image := dataURI("image/png", []byte{1, 2, 3})

	resp, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{ImageDataURI: image})
	require.NoError(t, err)

	userMsg := resp.Session.Messages[1]
	require.NotNil(t, userMsg.Content.Payload)
	assert.Equal(t, "", userMsg.Content.Payload.Text)
	assert.Equal(t, image, responder.input.ImageDataURI)
}

func TestChatService_RejectsConcurrentSubmission(t *testing.T) {
	responder := &stubResponder{}
	svc, _, session := newChatFixture(t, responder)

	var innerErr error
	responder.inspect = func() {
		_, innerErr = svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "second"})
	}

	_, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "first"})
	require.NoError(t, err)

	var conflict *ConflictError
	assert.ErrorAs(t, innerErr, &conflict)
	assert.Equal(t, 1, responder.calls)
}

func TestChatService_UnknownSession(t *testing.T) {
	svc, _, _ := newChatFixture(t, &stubResponder{})

	_, err := svc.SendMessage(context.Background(), uuid.New(), models.SendMessageRequest{Text: "hi"})
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestChatService_ResetSession(t *testing.T) {
	svc, _, session := newChatFixture(t, &stubResponder{})
	_, err := svc.SendMessage(context.Background(), session.ID, models.SendMessageRequest{Text: "hi"})
	require.NoError(t, err)

	reset, notice, err := svc.ResetSession(context.Background(), session.ID, ResetClearHistory)
	require.NoError(t, err)
	assert.Len(t, reset.Messages, 1)
	assert.Equal(t, "Chat History Cleared", notice.Title)

	_, notice, err = svc.ResetSession(context.Background(), session.ID, ResetNewChat)
	require.NoError(t, err)
	assert.Equal(t, "New Chat Started", notice.Title)
}
