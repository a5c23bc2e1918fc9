package loan

import (
	"context"
	"errors"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Overview is a loan together with its status.
type Overview struct {
	Loan   Loan
	Status Status
}

type Service interface {
	ListLoans(ctx context.Context, projectId int, asOf time.Time) ([]Overview, error)
	GetLoan(ctx context.Context, projectId int, loanId int, asOf time.Time) (Overview, error)
	// CreateLoan stores the loan and, when withEntry is set, the monthly
	// repayment entry linked to it.
	CreateLoan(ctx context.Context, loan Loan, withEntry bool) (Loan, error)
	UpdateLoan(ctx context.Context, loan Loan) (Loan, error)
	DeleteLoan(ctx context.Context, projectId int, loanId int) error
}

type ServiceImpl struct {
	repo    Repository
	guard   collaborator.Guard
	entries entry.Service
	actuals actual.Service
}

func NewService(repo Repository, guard collaborator.Guard, entries entry.Service, actuals actual.Service) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard, entries: entries, actuals: actuals}
}

// NewExistsFunc checks loan references of entries straight against the repository.
func NewExistsFunc(repo Repository) entry.ExistsFunc {
	return func(ctx context.Context, projectId int, loanId int) error {
		_, err := repo.GetLoan(ctx, projectId, loanId)
		if errors.Is(err, ErrLoanNotFound) {
			return rest.Invalid("loanId", "Loan does not exist")
		}
		return err
	}
}

func (s *ServiceImpl) ListLoans(ctx context.Context, projectId int, asOf time.Time) ([]Overview, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	loans, err := s.repo.ListLoans(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return []Overview{}, nil
	}
	lines, err := s.paymentLines(ctx, projectId, asOf)
	if err != nil {
		return nil, err
	}
	overviews := make([]Overview, 0, len(loans))
	for _, l := range loans {
		o, err := s.overview(ctx, l, asOf, lines)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, o)
	}
	return overviews, nil
}

func (s *ServiceImpl) GetLoan(ctx context.Context, projectId int, loanId int, asOf time.Time) (Overview, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Overview{}, err
	}
	l, err := s.repo.GetLoan(ctx, projectId, loanId)
	if err != nil {
		return Overview{}, err
	}
	lines, err := s.paymentLines(ctx, projectId, asOf)
	if err != nil {
		return Overview{}, err
	}
	return s.overview(ctx, l, asOf, lines)
}

func (s *ServiceImpl) CreateLoan(ctx context.Context, loan Loan, withEntry bool) (Loan, error) {
	if _, err := s.guard.RequireRole(ctx, loan.ProjectId, collaborator.RoleEditor); err != nil {
		return Loan{}, err
	}
	if err := loan.normalize(); err != nil {
		return Loan{}, err
	}
	loan.StartDate = utils.TruncateDay(loan.StartDate)
	created, err := s.repo.CreateLoan(ctx, loan)
	if err != nil {
		return Loan{}, err
	}
	if !withEntry {
		return created, nil
	}

	repayment, err := s.entries.CreateEntry(ctx, repaymentEntry(created))
	if err != nil {
		log.Warnf("Removing loan %d, its repayment entry could not be created: %v", created.Id, err)
		if _, deleteErr := s.repo.DeleteLoan(ctx, created.ProjectId, created.Id); deleteErr != nil {
			log.Errorf("failed to remove loan %d: %v", created.Id, deleteErr)
		}
		return Loan{}, err
	}
	created.EntryId = &repayment.Id
	return created, nil
}

func repaymentEntry(l Loan) entry.Entry {
	entryType := category.TypeExpense
	if l.Kind == KindLending {
		entryType = category.TypeIncome
	}
	end := l.EndDate()
	return entry.Entry{
		ProjectId: l.ProjectId,
		Type:      entryType,
		Name:      l.Name,
		Supplier:  l.Counterparty,
		Amount:    l.MonthlyPayment,
		Frequency: entry.FrequencyMonthly,
		StartDate: l.StartDate,
		EndDate:   &end,
		LoanId:    &l.Id,
	}
}

func (s *ServiceImpl) UpdateLoan(ctx context.Context, loan Loan) (Loan, error) {
	if _, err := s.guard.RequireRole(ctx, loan.ProjectId, collaborator.RoleEditor); err != nil {
		return Loan{}, err
	}
	if err := loan.normalize(); err != nil {
		return Loan{}, err
	}
	loan.StartDate = utils.TruncateDay(loan.StartDate)
	updated, err := s.repo.UpdateLoan(ctx, loan)
	if err != nil {
		return Loan{}, err
	}
	if !updated {
		return Loan{}, ErrLoanNotFound
	}
	return s.repo.GetLoan(ctx, loan.ProjectId, loan.Id)
}

func (s *ServiceImpl) DeleteLoan(ctx context.Context, projectId int, loanId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteLoan(ctx, projectId, loanId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLoanNotFound
	}
	return nil
}

func (s *ServiceImpl) paymentLines(ctx context.Context, projectId int, asOf time.Time) ([]actual.PaymentLine, error) {
	to := utils.TruncateDay(asOf)
	return s.actuals.ListPaymentLines(ctx, projectId, nil, &to)
}

// overview sums the payments of the loan's entries found in lines.
func (s *ServiceImpl) overview(ctx context.Context, l Loan, asOf time.Time, lines []actual.PaymentLine) (Overview, error) {
	entries, err := s.entries.ListLoanEntries(ctx, l.ProjectId, l.Id)
	if err != nil {
		return Overview{}, err
	}
	linked := make(map[int]bool, len(entries))
	for _, e := range entries {
		linked[e.Id] = true
	}
	repayments := make([]decimal.Decimal, 0)
	for _, line := range lines {
		if linked[line.EntryId] && line.Kind == actual.KindStandard {
			repayments = append(repayments, line.Amount)
		}
	}
	if l.EntryId == nil && len(entries) > 0 {
		l.EntryId = &entries[0].Id
	}
	return Overview{Loan: l, Status: l.StatusOf(utils.TruncateDay(asOf), repayments)}, nil
}
