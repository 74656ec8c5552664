// Package practice implements struggles, dated practice sets and their cards.
package practice

import (
	"context"
	"fmt"
	"time"

	"Articulate/apperr"
	"Articulate/core/numbering"
	"Articulate/repository"
)

const (
	DefaultPreviewLimit = 3
	MaxPreviewLimit     = 20
)

// Service 练习相关业务逻辑；所有方法都以 ownerID 为边界
type Service struct {
	struggles repository.StruggleRepository
	sets      repository.PracticeSetRepository
	cards     repository.PracticeCardRepository
	locker    numbering.Locker
	now       func() time.Time
}

// NewService wires the repositories; a nil locker means no cross-process lock.
func NewService(struggles repository.StruggleRepository, sets repository.PracticeSetRepository,
	cards repository.PracticeCardRepository, locker numbering.Locker) *Service {
	if locker == nil {
		locker = numbering.NoopLocker{}
	}
	return &Service{
		struggles: struggles,
		sets:      sets,
		cards:     cards,
		locker:    locker,
		now:       time.Now,
	}
}

// checkStrugglesOwned rejects tag references to struggles the caller does not own.
func (s *Service) checkStrugglesOwned(ctx context.Context, ownerID string, ids []string) error {
	wanted := uniqueStrings(ids)
	if len(wanted) == 0 {
		return nil
	}
	owned, err := s.struggles.OwnedIDs(ctx, ownerID, wanted)
	if err != nil {
		return err
	}
	if len(owned) != len(wanted) {
		return apperr.InvalidField("struggle_ids", "references unknown struggle")
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
