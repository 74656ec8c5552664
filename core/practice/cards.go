package practice

import (
	"context"
	"fmt"

	"Articulate/apperr"
	"Articulate/logger"
	"Articulate/model"
)

// CreateCard 创建单张卡片，可附带难点标签
func (s *Service) CreateCard(ctx context.Context, ownerID string, req model.CreateCardRequest) (*model.PracticeCard, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	set, err := s.sets.GetByID(ctx, ownerID, req.SetID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStrugglesOwned(ctx, ownerID, req.StruggleIDs); err != nil {
		return nil, err
	}

	card := req.CardInput.ToCard(set.ID)
	if err := s.cards.Create(ctx, &card); err != nil {
		return nil, err
	}

	tags := tagRows(card.ID, req.StruggleIDs)
	if err := s.cards.CreateTags(ctx, tags); err != nil {
		return nil, wrap("tag card", err)
	}
	return &card, nil
}

// BulkCreateCards inserts cards in one batch, then their tags in a second batch.
// Inserted cards stay when tagging fails.
func (s *Service) BulkCreateCards(ctx context.Context, ownerID, setID string, req model.BulkCardsRequest) (*model.BulkCardsResult, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	if err := checkUniqueOrder(req.Cards); err != nil {
		return nil, err
	}

	set, err := s.sets.GetByID(ctx, ownerID, setID)
	if err != nil {
		return nil, err
	}

	var struggleIDs []string
	for _, c := range req.Cards {
		struggleIDs = append(struggleIDs, c.StruggleIDs...)
	}
	if err := s.checkStrugglesOwned(ctx, ownerID, struggleIDs); err != nil {
		return nil, err
	}

	if req.ReplaceExisting {
		if err := s.cards.DeleteBySet(ctx, set.ID); err != nil {
			return nil, wrap("replace existing cards", err)
		}
	}

	cards := make([]model.PracticeCard, 0, len(req.Cards))
	for _, in := range req.Cards {
		cards = append(cards, in.ToCard(set.ID))
	}
	if err := s.cards.CreateBatch(ctx, cards); err != nil {
		return nil, err
	}

	// 按 order_index 关联新卡片 id 与输入
	idByOrder := make(map[int]string, len(cards))
	for _, c := range cards {
		idByOrder[c.OrderIndex] = c.ID
	}
	var tags []model.PracticeCardTag
	for _, in := range req.Cards {
		cardID, ok := idByOrder[*in.OrderIndex]
		if !ok {
			continue
		}
		tags = append(tags, tagRows(cardID, in.StruggleIDs)...)
	}

	result := &model.BulkCardsResult{Inserted: len(cards)}
	if err := s.cards.CreateTags(ctx, tags); err != nil {
		logger.Error("bulk card tagging failed, cards kept",
			logger.String("setId", set.ID),
			logger.Int("cards", len(cards)),
			logger.Int("tags", len(tags)),
			logger.ErrorField(err))
		return result, nil
	}
	result.TagsInserted = len(tags)
	return result, nil
}

func checkUniqueOrder(cards []model.CardInput) error {
	seen := make(map[int]int, len(cards))
	for i, c := range cards {
		if prev, ok := seen[*c.OrderIndex]; ok {
			return &apperr.ValidationError{
				Message: "Invalid request body",
				Details: map[string]string{
					fmt.Sprintf("cards[%d].order_index", i): fmt.Sprintf("duplicates cards[%d].order_index", prev),
				},
			}
		}
		seen[*c.OrderIndex] = i
	}
	return nil
}

func tagRows(cardID string, struggleIDs []string) []model.PracticeCardTag {
	ids := uniqueStrings(struggleIDs)
	rows := make([]model.PracticeCardTag, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.PracticeCardTag{CardID: cardID, StruggleID: id})
	}
	return rows
}
