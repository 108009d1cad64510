package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hr-relay-bot/internal/constant"
	"hr-relay-bot/internal/dto"
	"hr-relay-bot/internal/pkg/logger"
	"hr-relay-bot/internal/repository/contract"
	"hr-relay-bot/pkg/backend"
	"hr-relay-bot/pkg/events"
	"hr-relay-bot/pkg/llm"
	pktNats "hr-relay-bot/pkg/nats"
	"hr-relay-bot/pkg/store"
	"hr-relay-bot/pkg/teams"
)

const moduleRelay = "Relay"

// ITokenService provides a user's identity token. Satisfied by
// teams.TokenClient; faked in tests.
type ITokenService interface {
	GetUserToken(ctx context.Context, userID, channelID, scope string) (string, error)
}

// IBackendClient is the HR knowledge backend surface the relay depends on.
// Satisfied by backend.Client.
type IBackendClient interface {
	Configured() bool
	Query(ctx context.Context, text, token, userID, conversationID string) (backend.Response, error)
	RegisterToken(ctx context.Context, userID, token, tenantID string, extra map[string]interface{}) backend.RegistrationResult
}

type IRelayService interface {
	HandleActivity(ctx context.Context, activity *teams.Activity) *dto.RelayReply
	HandleFeedback(ctx context.Context, activity *teams.Activity)
}

// relayService is the message router: every inbound activity is classified
// as an auth command or a content query, handled, and answered. It holds no
// state across messages beyond the session histories.
type relayService struct {
	sessionRepo   contract.SessionRepository
	backendClient IBackendClient
	tokenService  ITokenService
	llmProvider   llm.Provider
	publisher     IPublisherService
	opsPublisher  *pktNats.Publisher
	logger        logger.ILogger

	tenantID     string
	instructions string
}

func NewRelayService(
	sessionRepo contract.SessionRepository,
	backendClient IBackendClient,
	tokenService ITokenService,
	llmProvider llm.Provider,
	publisher IPublisherService,
	opsPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
	tenantID string,
	instructions string,
) IRelayService {
	return &relayService{
		sessionRepo:   sessionRepo,
		backendClient: backendClient,
		tokenService:  tokenService,
		llmProvider:   llmProvider,
		publisher:     publisher,
		opsPublisher:  opsPublisher,
		logger:        sysLogger,
		tenantID:      tenantID,
		instructions:  instructions,
	}
}

// HandleActivity guarantees a reply for every inbound message: any internal
// failure, including a panic below this frame, collapses into the generic
// apology instead of propagating to the transport layer.
func (s *relayService) HandleActivity(ctx context.Context, activity *teams.Activity) (reply *dto.RelayReply) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(moduleRelay, "panic while handling activity", map[string]interface{}{
				"panic":           fmt.Sprintf("%v", r),
				"conversation_id": conversationID(activity),
			})
			reply = dto.TextReply(constant.MsgGenericFailure)
		}
	}()

	if isAuthTrigger(activity.Text) {
		return s.handleAuth(ctx, activity)
	}
	return s.handleQuery(ctx, activity)
}

// isAuthTrigger matches by literal membership in the trigger set after
// trimming and lowercasing. "  AUTH  " and "auth" classify identically.
func isAuthTrigger(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	_, ok := constant.AuthTriggers[normalized]
	return ok
}

func (s *relayService) handleAuth(ctx context.Context, activity *teams.Activity) *dto.RelayReply {
	userID := senderID(activity)
	if userID == "" {
		return dto.TextReply(constant.MsgCannotDetermineUser)
	}

	token, err := s.tokenService.GetUserToken(ctx, userID, activity.ChannelID, constant.TokenScope)
	if err != nil {
		s.logger.Warn(moduleRelay, "token acquisition failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		token = ""
	}

	if token == "" {
		// The front end drives the interactive sign-in out of band; our job
		// here is only to tell the user it has started.
		return dto.TextReply(constant.MsgSignInInitiated)
	}

	extra := map[string]interface{}{
		"conversation_id": conversationID(activity),
	}
	if activity.ChannelID != "" {
		extra["channel_id"] = activity.ChannelID
	}

	result := s.backendClient.RegisterToken(ctx, userID, token, s.tenantID, extra)
	if result.Failed() {
		// Registration is optional infrastructure: downgrade to a warning,
		// never block the reply.
		s.logger.Error(moduleRelay, "token registration failed", map[string]interface{}{
			"error":   result.Err,
			"user_id": userID,
		})
		s.publishOps(ctx, events.NewTokenRegisterFailed(userID, result.Err))
		return dto.TextReply(fmt.Sprintf(constant.MsgAuthWarningFmt, result.Err))
	}

	s.publishOps(ctx, events.NewUserAuthenticated(userID, conversationID(activity)))
	s.publishTurn(ctx, &dto.TurnEvent{
		ConversationID: conversationID(activity),
		UserID:         userID,
		Role:           store.RoleUser,
		Text:           "auth",
		Route:          dto.RouteAuth,
	})

	return dto.TextReply(fmt.Sprintf(constant.MsgAuthSuccessFmt, greetingName(result)))
}

func (s *relayService) handleQuery(ctx context.Context, activity *teams.Activity) *dto.RelayReply {
	userID := senderID(activity)
	if userID == "" {
		// Missing sender id is user-actionable, not a bug: guide them to
		// authenticate instead of answering with a generic error.
		return dto.TextReply(constant.MsgAuthRequired)
	}

	token, err := s.tokenService.GetUserToken(ctx, userID, activity.ChannelID, constant.TokenScope)
	if err != nil {
		s.logger.Warn(moduleRelay, "token acquisition failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		token = ""
	}
	if token == "" {
		// No token means no backend call, full stop.
		return dto.TextReply(constant.MsgAuthRequired)
	}

	convID := conversationID(activity)
	session, err := s.sessionRepo.GetOrCreate(ctx, convID)
	if err != nil {
		s.logger.Error(moduleRelay, "session store unavailable", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": convID,
		})
		return dto.TextReply(constant.MsgGenericFailure)
	}

	query := activity.Text
	if err := session.Append(ctx, store.RoleUser, query); err != nil {
		s.logger.Warn(moduleRelay, "failed to append user turn", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": convID,
		})
	}
	s.publishTurn(ctx, &dto.TurnEvent{
		ConversationID: convID,
		UserID:         userID,
		Role:           store.RoleUser,
		Text:           query,
		Route:          routeFor(s.backendClient.Configured()),
	})

	if s.backendClient.Configured() {
		return s.queryBackend(ctx, session, query, token, userID, convID)
	}
	return s.queryInference(ctx, session, query, userID, convID)
}

func (s *relayService) queryBackend(ctx context.Context, session contract.SessionHandle, query, token, userID, convID string) *dto.RelayReply {
	s.logger.Info(moduleRelay, "calling HR backend", map[string]interface{}{
		"query":           truncate(query, 100),
		"user_id":         userID,
		"conversation_id": convID,
	})

	resp, err := s.backendClient.Query(ctx, query, token, userID, convID)
	if err != nil {
		// Configuration failures only: Configured() and the token were
		// checked, so this is a wiring bug worth surfacing loudly.
		s.logger.Error(moduleRelay, "backend query misconfigured", map[string]interface{}{
			"error": err.Error(),
		})
		return dto.TextReply(constant.MsgGenericFailure)
	}

	switch resp.Kind {
	case backend.KindAuthRejected:
		s.logger.Warn(moduleRelay, "backend rejected identity token", map[string]interface{}{
			"user_id": userID,
		})
		return dto.TextReply(constant.MsgReauthenticate)

	case backend.KindServiceError:
		s.logger.Error(moduleRelay, "backend service error", map[string]interface{}{
			"classification": "http_error",
			"status":         resp.Status,
			"detail":         resp.Detail,
		})
		s.publishOps(ctx, events.NewBackendUnavailable("http_error", resp.Status))
		return dto.TextReply(constant.MsgBackendUnavailable)

	case backend.KindUnreachable:
		classification := "transport"
		if resp.Timeout {
			classification = "timeout"
		}
		s.logger.Error(moduleRelay, "backend unreachable", map[string]interface{}{
			"classification": classification,
			"detail":         resp.Detail,
		})
		s.publishOps(ctx, events.NewBackendUnavailable(classification, 0))
		return dto.TextReply(constant.MsgBackendUnavailable)
	}

	answer := formatAnswer(resp)
	if err := session.Append(ctx, store.RoleAssistant, answer); err != nil {
		s.logger.Warn(moduleRelay, "failed to append assistant turn", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": convID,
		})
	}
	s.publishTurn(ctx, &dto.TurnEvent{
		ConversationID: convID,
		UserID:         userID,
		Role:           store.RoleAssistant,
		Text:           answer,
		Route:          dto.RouteBackend,
	})

	return dto.TextReply(answer)
}

// queryInference answers locally when no backend is configured: the session
// history plus system instructions go to the chat-completion provider.
func (s *relayService) queryInference(ctx context.Context, session contract.SessionHandle, query, userID, convID string) *dto.RelayReply {
	history, err := session.History(ctx)
	if err != nil {
		s.logger.Error(moduleRelay, "failed to load history", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": convID,
		})
		history = []store.Turn{{Role: store.RoleUser, Text: query}}
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: store.RoleSystem, Content: s.instructions})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}

	answer, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		s.logger.Error(moduleRelay, "inference call failed", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": convID,
		})
		return dto.TextReply(constant.MsgGenericFailure)
	}

	if err := session.Append(ctx, store.RoleAssistant, answer); err != nil {
		s.logger.Warn(moduleRelay, "failed to append assistant turn", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": convID,
		})
	}
	s.publishTurn(ctx, &dto.TurnEvent{
		ConversationID: convID,
		UserID:         userID,
		Role:           store.RoleAssistant,
		Text:           answer,
		Route:          dto.RouteInference,
	})

	return &dto.RelayReply{Text: answer, AIGenerated: true, Feedback: true}
}

// HandleFeedback acknowledges a message/submitAction invoke. Feedback goes
// to the operator log; nothing is sent back to the user.
func (s *relayService) HandleFeedback(_ context.Context, activity *teams.Activity) {
	var value dto.FeedbackValue
	if len(activity.Value) > 0 {
		if err := json.Unmarshal(activity.Value, &value); err != nil {
			s.logger.Warn(moduleRelay, "malformed feedback payload", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}
	s.logger.Info(moduleRelay, "feedback received", map[string]interface{}{
		"action":          value.ActionName,
		"value":           value.ActionValue,
		"conversation_id": conversationID(activity),
	})
}

// formatAnswer renders the primary answer plus at most the first three
// source titles as a numbered list. Bounding the list is a UX constraint.
func formatAnswer(resp backend.Response) string {
	answer := resp.Answer
	if answer == "" {
		answer = "Sorry, I cannot answer that question."
	}

	if len(resp.Sources) == 0 {
		return answer
	}

	var b strings.Builder
	b.WriteString(answer)
	b.WriteString(constant.SourcesHeader)
	for i, src := range resp.Sources {
		if i >= constant.MaxSourcesInReply {
			break
		}
		title := src.DocumentTitle
		if title == "" {
			title = "Document"
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, title)
	}
	return b.String()
}

func (s *relayService) publishTurn(ctx context.Context, event *dto.TurnEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTurn(ctx, event); err != nil {
		s.logger.Warn(moduleRelay, "failed to publish turn event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *relayService) publishOps(ctx context.Context, event events.Event) {
	if err := s.opsPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn(moduleRelay, "failed to publish ops event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func senderID(activity *teams.Activity) string {
	if activity.From == nil {
		return ""
	}
	return activity.From.ID
}

func conversationID(activity *teams.Activity) string {
	if activity.Conversation == nil {
		return ""
	}
	return activity.Conversation.ID
}

func greetingName(result backend.RegistrationResult) string {
	if name, ok := result.User["full_name"].(string); ok && name != "" {
		return name
	}
	if email, ok := result.User["email"].(string); ok && email != "" {
		return email
	}
	return "User"
}

func routeFor(backendConfigured bool) string {
	if backendConfigured {
		return dto.RouteBackend
	}
	return dto.RouteInference
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
