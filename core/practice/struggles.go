package practice

import (
	"context"

	"Articulate/model"

	"golang.org/x/sync/errgroup"
)

// ListStruggles 按创建时间升序返回
func (s *Service) ListStruggles(ctx context.Context, ownerID string) ([]model.Struggle, error) {
	out, err := s.struggles.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Struggle{}
	}
	return out, nil
}

// StruggleOverview returns every struggle with its number of struggle-section sets.
func (s *Service) StruggleOverview(ctx context.Context, ownerID string) ([]model.StruggleWithCount, error) {
	var (
		struggles []model.Struggle
		counts    map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		struggles, err = s.struggles.List(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.sets.CountByStruggle(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.StruggleWithCount, 0, len(struggles))
	for _, st := range struggles {
		out = append(out, model.StruggleWithCount{Struggle: st, SetCount: counts[st.ID]})
	}
	return out, nil
}

func (s *Service) CreateStruggle(ctx context.Context, ownerID string, req model.CreateStruggleRequest) (*model.Struggle, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	st := &model.Struggle{
		UserID:      ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if st.Status == "" {
		st.Status = model.StruggleStatusActive
	}
	if err := s.struggles.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdateStruggle(ctx context.Context, ownerID, id string, req model.UpdateStruggleRequest) (*model.Struggle, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	return s.struggles.Update(ctx, ownerID, id, req.Changes())
}

// DeleteStruggle 级联删除练习集、卡片和标签
func (s *Service) DeleteStruggle(ctx context.Context, ownerID, id string) error {
	return s.struggles.Delete(ctx, ownerID, id)
}
