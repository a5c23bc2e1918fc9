package entry

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	entries map[int]Entry
	nextId  int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{entries: map[int]Entry{}}
}

func (s *RepositoryStub) sorted(keep func(Entry) bool) []Entry {
	entries := make([]Entry, 0)
	for _, e := range s.entries {
		if keep(e) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].StartDate.Equal(entries[j].StartDate) {
			return entries[i].StartDate.Before(entries[j].StartDate)
		}
		return entries[i].Id < entries[j].Id
	})
	return entries
}

func (s *RepositoryStub) ListEntries(ctx context.Context, projectId int, scenarioId *int) ([]Entry, error) {
	return s.sorted(func(e Entry) bool {
		if e.ProjectId != projectId {
			return false
		}
		if scenarioId == nil {
			return e.ScenarioId == nil
		}
		return e.ScenarioId != nil && *e.ScenarioId == *scenarioId
	}), nil
}

func (s *RepositoryStub) ListLoanEntries(ctx context.Context, projectId int, loanId int) ([]Entry, error) {
	return s.sorted(func(e Entry) bool {
		return e.ProjectId == projectId && e.ScenarioId == nil && e.LoanId != nil && *e.LoanId == loanId
	}), nil
}

func (s *RepositoryStub) GetEntry(ctx context.Context, projectId int, entryId int) (Entry, error) {
	e, ok := s.entries[entryId]
	if !ok || e.ProjectId != projectId {
		return Entry{}, ErrEntryNotFound
	}
	return e, nil
}

func (s *RepositoryStub) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	s.nextId++
	entry.Id = s.nextId
	s.entries[entry.Id] = entry
	return entry, nil
}

func (s *RepositoryStub) UpdateEntry(ctx context.Context, entry Entry) (bool, error) {
	existing, err := s.GetEntry(ctx, entry.ProjectId, entry.Id)
	if err != nil {
		return false, nil
	}
	entry.ScenarioId = existing.ScenarioId
	s.entries[entry.Id] = entry
	return true, nil
}

func (s *RepositoryStub) DeleteEntry(ctx context.Context, projectId int, entryId int) (bool, error) {
	if _, err := s.GetEntry(ctx, projectId, entryId); err != nil {
		return false, nil
	}
	delete(s.entries, entryId)
	return true, nil
}
