package usage

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"pepperbackend/core"
	"pepperbackend/db"
	"pepperbackend/models"
)

// Claude Sonnet pricing per 1K tokens (approximate as of 2025)
const (
	InputCostPer1K  = 0.003 // $3.00 per 1M tokens
	OutputCostPer1K = 0.015 // $15.00 per 1M tokens
)

type UsageServiceImpl struct {
	usageRepo *db.PostgresConversationUsageRepository
}

func NewUsageService(repo *db.PostgresConversationUsageRepository) *UsageServiceImpl {
	return &UsageServiceImpl{usageRepo: repo}
}

// TrackUsage accumulates token counts and estimated cost for a conversation
func (s *UsageServiceImpl) TrackUsage(
	ctx context.Context,
	userID, conversationID string,
	inputTokens, outputTokens int,
) error {
	log.Printf("📋 Starting to track usage for conversation %s: input=%d, output=%d tokens",
		conversationID, inputTokens, outputTokens)

	if conversationID == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if inputTokens < 0 || outputTokens < 0 {
		return fmt.Errorf("token counts cannot be negative")
	}

	maybeUsage, err := s.usageRepo.GetConversationUsageByConversationID(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to check existing usage record: %w", err)
	}

	estimatedCost := s.EstimateCost(inputTokens, outputTokens)

	if existing, ok := maybeUsage.Get(); ok {
		newInputTokens := existing.TotalInputTokens + inputTokens
		newOutputTokens := existing.TotalOutputTokens + outputTokens
		newEstimatedCost := existing.EstimatedCostUSD.Add(estimatedCost)

		if err := s.usageRepo.UpdateConversationUsage(ctx, conversationID,
			newInputTokens, newOutputTokens, newEstimatedCost); err != nil {
			return fmt.Errorf("failed to update conversation usage: %w", err)
		}
	} else {
		record := &models.ConversationUsage{
			ID:                core.NewID("cu"),
			UserID:            userID,
			ConversationID:    conversationID,
			TotalInputTokens:  inputTokens,
			TotalOutputTokens: outputTokens,
			EstimatedCostUSD:  estimatedCost,
		}

		if err := s.usageRepo.CreateConversationUsage(ctx, record); err != nil {
			return fmt.Errorf("failed to create conversation usage: %w", err)
		}
	}

	log.Printf("📋 Completed successfully - tracked usage for conversation %s, cost: $%s",
		conversationID, estimatedCost.String())
	return nil
}

func (s *UsageServiceImpl) GetConversationUsage(
	ctx context.Context,
	conversationID string,
) (mo.Option[*models.ConversationUsage], error) {
	if conversationID == "" {
		return mo.None[*models.ConversationUsage](), fmt.Errorf("conversation ID cannot be empty")
	}

	return s.usageRepo.GetConversationUsageByConversationID(ctx, conversationID)
}

// EstimateCost computes the approximate USD cost for a token count pair
func (s *UsageServiceImpl) EstimateCost(inputTokens, outputTokens int) decimal.Decimal {
	inputCost := decimal.NewFromInt(int64(inputTokens)).
		Div(decimal.NewFromInt(1000)).
		Mul(decimal.NewFromFloat(InputCostPer1K))
	outputCost := decimal.NewFromInt(int64(outputTokens)).
		Div(decimal.NewFromInt(1000)).
		Mul(decimal.NewFromFloat(OutputCostPer1K))

	return inputCost.Add(outputCost)
}
