package category

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	categories map[int]Category
	nextId     int
	// Referenced marks category ids used by entries.
	Referenced map[int]bool
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{categories: map[int]Category{}, Referenced: map[int]bool{}}
}

func (s *RepositoryStub) ListCategories(ctx context.Context, projectId int, categoryType Type) ([]Category, error) {
	categories := make([]Category, 0)
	for _, c := range s.categories {
		if c.ProjectId == projectId && c.Type == categoryType {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Position != categories[j].Position {
			return categories[i].Position < categories[j].Position
		}
		return categories[i].Id < categories[j].Id
	})
	return categories, nil
}

func (s *RepositoryStub) GetCategory(ctx context.Context, projectId int, categoryId int) (Category, error) {
	c, ok := s.categories[categoryId]
	if !ok || c.ProjectId != projectId {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (s *RepositoryStub) CreateCategory(ctx context.Context, category Category) (Category, error) {
	s.nextId++
	category.Id = s.nextId
	category.Children = nil
	s.categories[category.Id] = category
	return category, nil
}

func (s *RepositoryStub) RenameCategory(ctx context.Context, projectId int, categoryId int, name string) (bool, error) {
	c, err := s.GetCategory(ctx, projectId, categoryId)
	if err != nil {
		return false, nil
	}
	c.Name = name
	s.categories[categoryId] = c
	return true, nil
}

func (s *RepositoryStub) UpdatePosition(ctx context.Context, projectId int, categoryId int, position int) (bool, error) {
	c, err := s.GetCategory(ctx, projectId, categoryId)
	if err != nil {
		return false, nil
	}
	c.Position = position
	s.categories[categoryId] = c
	return true, nil
}

func (s *RepositoryStub) DeleteCategory(ctx context.Context, projectId int, categoryId int) (bool, error) {
	if _, err := s.GetCategory(ctx, projectId, categoryId); err != nil {
		return false, nil
	}
	delete(s.categories, categoryId)
	for id, c := range s.categories {
		if c.ParentId != nil && *c.ParentId == categoryId {
			delete(s.categories, id)
		}
	}
	return true, nil
}

func (s *RepositoryStub) CountEntryReferences(ctx context.Context, projectId int, categoryIds []int) (int, error) {
	count := 0
	for _, id := range categoryIds {
		if s.Referenced[id] {
			count++
		}
	}
	return count, nil
}
