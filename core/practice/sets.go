package practice

import (
	"context"
	"errors"

	"Articulate/apperr"
	"Articulate/core/numbering"
	"Articulate/core/timebucket"
	"Articulate/model"

	"golang.org/x/sync/errgroup"
)

func (s *Service) ListSets(ctx context.Context, ownerID string, filter model.PracticeSetFilter) ([]model.PracticeSet, error) {
	if err := model.Validate("Invalid query", filter); err != nil {
		return nil, err
	}
	out, err := s.sets.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.PracticeSet{}
	}
	return out, nil
}

// CreateSet buckets the date in the reference zone and assigns set_index when absent.
func (s *Service) CreateSet(ctx context.Context, ownerID string, req model.CreatePracticeSetRequest) (*model.PracticeSet, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}

	var struggleID string
	if req.StruggleID != nil {
		struggleID = *req.StruggleID
	}
	switch req.SectionType {
	case model.SectionStruggle:
		if struggleID == "" {
			return nil, apperr.InvalidField("struggle_id", "is required for struggle sections")
		}
		if _, err := s.struggles.GetByID(ctx, ownerID, struggleID); err != nil {
			return nil, err
		}
	case model.SectionMisc:
		if struggleID != "" {
			return nil, apperr.InvalidField("struggle_id", "must be empty for misc sections")
		}
	}

	bucket := timebucket.Bucket(s.now())
	if req.Date != nil && *req.Date != "" {
		b, err := timebucket.BucketOf(*req.Date)
		if err != nil {
			return nil, apperr.InvalidField("date", "must be a date or timestamp")
		}
		bucket = b
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	set := &model.PracticeSet{}
	scope := numbering.Scope{
		OwnerID:     ownerID,
		SectionType: req.SectionType,
		StruggleID:  struggleID,
		DateBucket:  bucket,
	}
	_, err := numbering.Create(ctx, s.sets, s.locker, scope, req.SetIndex, func(index int) error {
		*set = model.PracticeSet{
			UserID:           ownerID,
			SectionType:      req.SectionType,
			DateBucketLondon: bucket,
			SetIndex:         index,
			Title:            req.Title,
			Source:           source,
		}
		if struggleID != "" {
			id := struggleID
			set.StruggleID = &id
		}
		return s.sets.Create(ctx, set)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) GetSet(ctx context.Context, ownerID, id string) (*model.PracticeSet, error) {
	return s.sets.GetByID(ctx, ownerID, id)
}

func (s *Service) UpdateSet(ctx context.Context, ownerID, id string, req model.UpdatePracticeSetRequest) (*model.PracticeSet, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	return s.sets.Update(ctx, ownerID, id, req.Changes())
}

// DeleteSet 删除练习集及其卡片
func (s *Service) DeleteSet(ctx context.Context, ownerID, id string) error {
	return s.sets.Delete(ctx, ownerID, id)
}

// SetDetails returns the set with its struggle title, ordered cards and card tags.
func (s *Service) SetDetails(ctx context.Context, ownerID, id string) (*model.PracticeSetDetails, error) {
	set, err := s.sets.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	details := &model.PracticeSetDetails{Set: model.PracticeSetWithStruggle{PracticeSet: *set}}
	g, gctx := errgroup.WithContext(ctx)
	if set.StruggleID != nil {
		g.Go(func() error {
			st, err := s.struggles.GetByID(gctx, ownerID, *set.StruggleID)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			details.Set.Struggles = &model.StruggleRef{ID: st.ID, Title: st.Title}
			return nil
		})
	}
	g.Go(func() error {
		cards, err := s.cards.ListBySet(gctx, set.ID)
		if err != nil {
			return err
		}
		details.Cards = cards
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if details.Cards == nil {
		details.Cards = []model.PracticeCard{}
	}

	ids := make([]string, 0, len(details.Cards))
	for _, c := range details.Cards {
		ids = append(ids, c.ID)
	}
	details.Tags, err = s.cards.ListTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// PrintData 打印页：练习集及按顺序排列的卡片
func (s *Service) PrintData(ctx context.Context, ownerID, id string) (*model.PracticeSetPrintData, error) {
	set, err := s.sets.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.ListBySet(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []model.PracticeCard{}
	}
	return &model.PracticeSetPrintData{Set: *set, Cards: cards}, nil
}

// Preview returns the first limit cards (1..20) plus the total card count.
func (s *Service) Preview(ctx context.Context, ownerID, id string, limit int) (*model.PracticeSetPreview, error) {
	if limit < 1 || limit > MaxPreviewLimit {
		return nil, &apperr.ValidationError{
			Message: "Invalid query",
			Details: map[string]string{"limit": "must be between 1 and 20"},
		}
	}
	set, err := s.sets.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	preview := &model.PracticeSetPreview{SetID: set.ID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		preview.Cards, err = s.cards.Preview(gctx, set.ID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		preview.TotalCards, err = s.cards.CountBySet(gctx, set.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return preview, nil
}
