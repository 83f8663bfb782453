package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// AuditPort records mutations for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CachePort invalidates read-model caches after a mutation.
type CachePort interface {
	BustCompany(ctx context.Context, companyID int64)
}

type Service struct {
	repo  Repository
	audit AuditPort
	cache CachePort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort, cache CachePort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Get(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	return s.repo.Get(ctx, companyID, voucherID)
}

func (s *Service) ListByDate(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error) {
	return s.repo.ListByDate(ctx, companyID, from, to)
}

// Create posts a new voucher. The full line set is validated, resolved
// against reference data, numbered, and inserted inside one transaction;
// any failure leaves no partial state.
func (s *Service) Create(ctx context.Context, in CreateInput) (Voucher, error) {
	if err := in.Validate(); err != nil {
		return Voucher{}, err
	}
	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		closed, err := tx.PeriodClosedForDate(ctx, in.CompanyID, in.Date)
		if err != nil {
			return err
		}
		if closed {
			return shared.ErrPeriodClosedForPosting
		}
		var headerPartner *int64
		if in.Kind == KindTrade {
			partner, err := tx.GetPartnerByCode(ctx, in.CompanyID, in.PartnerCode)
			if err != nil {
				return err
			}
			if !partner.Active {
				return shared.ErrPartnerInactive
			}
			headerPartner = &partner.ID
		}
		lines, err := s.resolveLines(ctx, tx, in.CompanyID, headerPartner, 1, in.Lines)
		if err != nil {
			return err
		}
		if err := ValidateLines(lines); err != nil {
			return err
		}
		number := in.Number
		if number == "" {
			seq, err := tx.NextSequence(ctx, in.CompanyID, in.Date)
			if err != nil {
				return err
			}
			number = FormatNumber(in.Date, seq)
		}
		debit, credit := Totals(lines)
		voucher = Voucher{
			CompanyID:    in.CompanyID,
			Date:         in.Date,
			Number:       number,
			Description:  in.Description,
			Kind:         in.Kind,
			PartnerID:    headerPartner,
			TradeType:    in.TradeType,
			SupplyAmount: in.SupplyAmount,
			TaxAmount:    in.TaxAmount,
			TotalDebit:   debit,
			TotalCredit:  credit,
		}
		if err := tx.InsertVoucher(ctx, &voucher); err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, voucher.ID, lines); err != nil {
			return err
		}
		voucher.Lines = lines
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	s.afterMutation(ctx, in.CompanyID, "voucher.create", voucher.ID, map[string]any{
		"number": voucher.Number,
		"kind":   voucher.Kind,
	})
	return voucher, nil
}

// AddLines appends lines to an existing voucher. The resulting line set
// must still balance, so callers append balanced groups.
func (s *Service) AddLines(ctx context.Context, companyID, voucherID int64, inputs []LineInput) (Voucher, error) {
	if len(inputs) == 0 {
		return Voucher{}, shared.ErrNoLines
	}
	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadMutable(ctx, tx, companyID, voucherID)
		if err != nil {
			return err
		}
		added, err := s.resolveLines(ctx, tx, companyID, current.PartnerID, len(current.Lines)+1, inputs)
		if err != nil {
			return err
		}
		next := append(append([]Line(nil), current.Lines...), added...)
		return s.persistLines(ctx, tx, &current, next, &voucher)
	})
	if err != nil {
		return Voucher{}, err
	}
	s.afterMutation(ctx, companyID, "voucher.add_lines", voucherID, map[string]any{"count": len(inputs)})
	return voucher, nil
}

// UpdateLine replaces one line, identified by its line number.
func (s *Service) UpdateLine(ctx context.Context, companyID, voucherID int64, lineNo int, in LineInput) (Voucher, error) {
	if err := in.check(); err != nil {
		return Voucher{}, err
	}
	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadMutable(ctx, tx, companyID, voucherID)
		if err != nil {
			return err
		}
		idx := lineIndex(current.Lines, lineNo)
		if idx < 0 {
			return shared.ErrLineNotFound
		}
		resolved, err := s.resolveLines(ctx, tx, companyID, current.PartnerID, lineNo, []LineInput{in})
		if err != nil {
			return err
		}
		next := append([]Line(nil), current.Lines...)
		next[idx] = resolved[0]
		return s.persistLines(ctx, tx, &current, next, &voucher)
	})
	if err != nil {
		return Voucher{}, err
	}
	s.afterMutation(ctx, companyID, "voucher.update_line", voucherID, map[string]any{"line_no": lineNo})
	return voucher, nil
}

// DeleteLine removes one line. Removing the last remaining line deletes
// the voucher itself; the returned flag reports that case.
func (s *Service) DeleteLine(ctx context.Context, companyID, voucherID int64, lineNo int) (bool, error) {
	var voucherDeleted bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadMutable(ctx, tx, companyID, voucherID)
		if err != nil {
			return err
		}
		idx := lineIndex(current.Lines, lineNo)
		if idx < 0 {
			return shared.ErrLineNotFound
		}
		next := append([]Line(nil), current.Lines[:idx]...)
		next = append(next, current.Lines[idx+1:]...)
		if len(next) == 0 {
			voucherDeleted = true
			return tx.DeleteVoucher(ctx, companyID, voucherID)
		}
		renumber(next)
		var unused Voucher
		return s.persistLines(ctx, tx, &current, next, &unused)
	})
	if err != nil {
		return false, err
	}
	s.afterMutation(ctx, companyID, "voucher.delete_line", voucherID, map[string]any{
		"line_no": lineNo,
		"voucher_deleted": voucherDeleted,
	})
	return voucherDeleted, nil
}

// Delete removes a voucher and all its lines.
func (s *Service) Delete(ctx context.Context, companyID, voucherID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadMutable(ctx, tx, companyID, voucherID)
		if err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, companyID, current.ID)
	})
	if err != nil {
		return err
	}
	s.afterMutation(ctx, companyID, "voucher.delete", voucherID, nil)
	return nil
}

// loadMutable fetches the voucher under lock and rejects mutations inside
// closed periods.
func (s *Service) loadMutable(ctx context.Context, tx TxRepository, companyID, voucherID int64) (Voucher, error) {
	current, err := tx.GetVoucherForUpdate(ctx, companyID, voucherID)
	if err != nil {
		return Voucher{}, err
	}
	closed, err := tx.PeriodClosedForDate(ctx, companyID, current.Date)
	if err != nil {
		return Voucher{}, err
	}
	if closed {
		return Voucher{}, shared.ErrPeriodClosedForPosting
	}
	return current, nil
}

// persistLines validates the resulting set, rewrites the lines, and
// recomputes the stored voucher totals.
func (s *Service) persistLines(ctx context.Context, tx TxRepository, current *Voucher, next []Line, out *Voucher) error {
	if err := ValidateLines(next); err != nil {
		return err
	}
	if err := tx.ReplaceLines(ctx, current.ID, next); err != nil {
		return err
	}
	debit, credit := Totals(next)
	if err := tx.UpdateTotals(ctx, current.ID, debit, credit); err != nil {
		return err
	}
	*out = *current
	out.Lines = next
	out.TotalDebit = debit
	out.TotalCredit = credit
	return nil
}

func (s *Service) resolveLines(ctx context.Context, tx TxRepository, companyID int64, headerPartner *int64, startNo int, inputs []LineInput) ([]Line, error) {
	lines := make([]Line, 0, len(inputs))
	for idx, in := range inputs {
		if err := in.check(); err != nil {
			return nil, fmt.Errorf("line %d: %w", startNo+idx, err)
		}
		account, err := tx.GetAccountByCode(ctx, companyID, in.AccountCode)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", startNo+idx, err)
		}
		if !account.Active {
			return nil, fmt.Errorf("line %d: %w", startNo+idx, shared.ErrAccountInactive)
		}
		partnerID := headerPartner
		if in.PartnerCode != "" {
			partner, err := tx.GetPartnerByCode(ctx, companyID, in.PartnerCode)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", startNo+idx, err)
			}
			if !partner.Active {
				return nil, fmt.Errorf("line %d: %w", startNo+idx, shared.ErrPartnerInactive)
			}
			partnerID = &partner.ID
		}
		line := Line{
			LineNo:      startNo + idx,
			AccountID:   account.ID,
			PartnerID:   partnerID,
			Description: in.Description,
			ClassCode:   in.ClassCode,
		}
		if in.Side == accounts.SideDebit {
			line.DebitAmount = in.Amount
		} else {
			line.CreditAmount = in.Amount
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Service) afterMutation(ctx context.Context, companyID int64, action string, voucherID int64, meta map[string]any) {
	if s.cache != nil {
		s.cache.BustCompany(ctx, companyID)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			CompanyID: companyID,
			Action:    action,
			Entity:    "voucher",
			EntityID:  fmt.Sprintf("%d", voucherID),
			Meta:      meta,
			At:        s.now(),
		})
	}
}

func lineIndex(lines []Line, lineNo int) int {
	for idx, line := range lines {
		if line.LineNo == lineNo {
			return idx
		}
	}
	return -1
}

func renumber(lines []Line) {
	for idx := range lines {
		lines[idx].LineNo = idx + 1
	}
}
