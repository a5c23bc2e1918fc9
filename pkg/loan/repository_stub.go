package loan

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	loans  map[int]Loan
	nextId int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{loans: map[int]Loan{}}
}

func (s *RepositoryStub) ListLoans(ctx context.Context, projectId int) ([]Loan, error) {
	loans := make([]Loan, 0)
	for _, l := range s.loans {
		if l.ProjectId == projectId {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].Id < loans[j].Id })
	return loans, nil
}

func (s *RepositoryStub) GetLoan(ctx context.Context, projectId int, loanId int) (Loan, error) {
	l, ok := s.loans[loanId]
	if !ok || l.ProjectId != projectId {
		return Loan{}, ErrLoanNotFound
	}
	return l, nil
}

func (s *RepositoryStub) CreateLoan(ctx context.Context, loan Loan) (Loan, error) {
	s.nextId++
	loan.Id = s.nextId
	loan.EntryId = nil
	s.loans[loan.Id] = loan
	return loan, nil
}

func (s *RepositoryStub) UpdateLoan(ctx context.Context, loan Loan) (bool, error) {
	existing, ok := s.loans[loan.Id]
	if !ok || existing.ProjectId != loan.ProjectId {
		return false, nil
	}
	loan.EntryId = existing.EntryId
	s.loans[loan.Id] = loan
	return true, nil
}

func (s *RepositoryStub) DeleteLoan(ctx context.Context, projectId int, loanId int) (bool, error) {
	l, ok := s.loans[loanId]
	if !ok || l.ProjectId != projectId {
		return false, nil
	}
	delete(s.loans, loanId)
	return true, nil
}
