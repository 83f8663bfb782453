package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/settlement"
)

// Service assembles financial reports. Builds are deduplicated across
// concurrent callers; the heavy lifting is one aggregate query plus a
// pure fold.
type Service struct {
	repo  Repository
	group singleflight.Group
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) TrialBalance(ctx context.Context, companyID int64, fiscalYear int) (TrialBalance, error) {
	key := fmt.Sprintf("tb:%d:%d", companyID, fiscalYear)
	result, err, _ := s.group.Do(key, func() (any, error) {
		from, to, err := s.repo.PeriodRange(ctx, companyID, fiscalYear)
		if err != nil {
			return TrialBalance{}, err
		}
		activity, err := s.repo.Activity(ctx, companyID, fiscalYear, from, to, nil)
		if err != nil {
			return TrialBalance{}, err
		}
		return BuildTrialBalance(fiscalYear, activity), nil
	})
	if err != nil {
		return TrialBalance{}, err
	}
	return result.(TrialBalance), nil
}

func (s *Service) BalanceSheet(ctx context.Context, companyID int64, fiscalYear int) (BalanceSheet, error) {
	key := fmt.Sprintf("bs:%d:%d", companyID, fiscalYear)
	result, err, _ := s.group.Do(key, func() (any, error) {
		from, to, err := s.repo.PeriodRange(ctx, companyID, fiscalYear)
		if err != nil {
			return BalanceSheet{}, err
		}
		activity, err := s.repo.Activity(ctx, companyID, fiscalYear, from, to, nil)
		if err != nil {
			return BalanceSheet{}, err
		}
		return BuildBalanceSheet(fiscalYear, activity), nil
	})
	if err != nil {
		return BalanceSheet{}, err
	}
	return result.(BalanceSheet), nil
}

func (s *Service) IncomeStatement(ctx context.Context, companyID int64, fiscalYear int) (IncomeStatement, error) {
	key := fmt.Sprintf("pl:%d:%d", companyID, fiscalYear)
	result, err, _ := s.group.Do(key, func() (any, error) {
		from, to, err := s.repo.PeriodRange(ctx, companyID, fiscalYear)
		if err != nil {
			return IncomeStatement{}, err
		}
		activity, err := s.repo.Activity(ctx, companyID, fiscalYear, from, to, settlement.Markers)
		if err != nil {
			return IncomeStatement{}, err
		}
		return BuildIncomeStatement(fiscalYear, activity), nil
	})
	if err != nil {
		return IncomeStatement{}, err
	}
	return result.(IncomeStatement), nil
}
