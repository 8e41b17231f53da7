package api

import "pepperbackend/models"

// DomainUserToAPIUser converts a domain User model to an API UserModel
func DomainUserToAPIUser(domainUser *models.User) *UserModel {
	if domainUser == nil {
		return nil
	}

	return &UserModel{
		ID:        domainUser.ID,
		Email:     domainUser.Email,
		CreatedAt: domainUser.CreatedAt,
		UpdatedAt: domainUser.UpdatedAt,
	}
}

// DomainSessionToAPIDeviceFlowStart converts a pending OAuthSession to the
// API start response, leaving the device code out
func DomainSessionToAPIDeviceFlowStart(session *models.OAuthSession) *DeviceFlowStart {
	if session == nil {
		return nil
	}

	return &DeviceFlowStart{
		Provider:        session.Provider,
		UserCode:        session.UserCode,
		VerificationURI: session.VerificationURI,
		IntervalSeconds: session.IntervalSeconds,
		ExpiresAt:       session.ExpiresAt,
	}
}

// DomainPollResultToAPIPollResult converts a coordinator poll result to the
// API model, dropping the raw tokens
func DomainPollResultToAPIPollResult(result *models.PollResult) *PollResultModel {
	if result == nil {
		return nil
	}

	return &PollResultModel{
		Status:          result.Status,
		IntervalSeconds: result.IntervalSeconds,
	}
}

// DomainConversationToAPIConversation converts a domain Conversation to an API model
func DomainConversationToAPIConversation(conversation *models.Conversation) *ConversationModel {
	if conversation == nil {
		return nil
	}

	return &ConversationModel{
		ID:        conversation.ID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}

// DomainConversationsToAPIConversations converts a slice of domain Conversations
func DomainConversationsToAPIConversations(conversations []*models.Conversation) []*ConversationModel {
	apiConversations := make([]*ConversationModel, 0, len(conversations))
	for _, conversation := range conversations {
		apiConversations = append(apiConversations, DomainConversationToAPIConversation(conversation))
	}
	return apiConversations
}

// DomainMessageToAPIMessage converts a domain ConversationMessage to an API model
func DomainMessageToAPIMessage(message *models.ConversationMessage) *MessageModel {
	if message == nil {
		return nil
	}

	return &MessageModel{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Role:           message.Role,
		Content:        message.Content,
		IntentKind:     message.IntentKind,
		CreatedAt:      message.CreatedAt,
	}
}

// DomainMessagesToAPIMessages converts a slice of domain ConversationMessages
func DomainMessagesToAPIMessages(messages []*models.ConversationMessage) []*MessageModel {
	apiMessages := make([]*MessageModel, 0, len(messages))
	for _, message := range messages {
		apiMessages = append(apiMessages, DomainMessageToAPIMessage(message))
	}
	return apiMessages
}

// DomainUsageToAPIUsage converts a domain ConversationUsage to an API model
func DomainUsageToAPIUsage(usage *models.ConversationUsage) *ConversationUsageModel {
	if usage == nil {
		return nil
	}

	return &ConversationUsageModel{
		ConversationID:    usage.ConversationID,
		TotalInputTokens:  usage.TotalInputTokens,
		TotalOutputTokens: usage.TotalOutputTokens,
		EstimatedCostUSD:  usage.EstimatedCostUSD.StringFixed(6),
	}
}

// DomainNoteToAPINote converts a domain Note to an API model
func DomainNoteToAPINote(note *models.Note) *NoteModel {
	if note == nil {
		return nil
	}

	return &NoteModel{
		ID:        note.ID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
	}
}

// DomainNotesToAPINotes converts a slice of domain Notes
func DomainNotesToAPINotes(notes []*models.Note) []*NoteModel {
	apiNotes := make([]*NoteModel, 0, len(notes))
	for _, note := range notes {
		apiNotes = append(apiNotes, DomainNoteToAPINote(note))
	}
	return apiNotes
}
