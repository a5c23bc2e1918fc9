package category

import (
	"context"
	"sort"
	"strings"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetTree(ctx context.Context, projectId int, categoryType Type) ([]Category, error)
	GetCategory(ctx context.Context, projectId int, categoryId int) (Category, error)
	AddCategory(ctx context.Context, projectId int, categoryType Type, name string) (Category, error)
	AddSubCategory(ctx context.Context, projectId int, parentId int, name string) (Category, error)
	RenameCategory(ctx context.Context, projectId int, categoryId int, name string) (Category, error)
	DeleteCategory(ctx context.Context, projectId int, categoryId int) error
	// MoveCategoryAfter places the category right after precedingId among
	// its siblings; precedingId 0 moves it to the front.
	MoveCategoryAfter(ctx context.Context, projectId int, categoryId int, precedingId int) ([]Category, error)
	SeedDefaults(ctx context.Context, projectId int) error
}

type ServiceImpl struct {
	repo  Repository
	guard collaborator.Guard
}

func NewService(repo Repository, guard collaborator.Guard) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard}
}

func (s *ServiceImpl) GetTree(ctx context.Context, projectId int, categoryType Type) ([]Category, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	flat, err := s.repo.ListCategories(ctx, projectId, categoryType)
	if err != nil {
		return nil, err
	}
	return buildTree(flat), nil
}

func (s *ServiceImpl) GetCategory(ctx context.Context, projectId int, categoryId int) (Category, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Category{}, err
	}
	return s.repo.GetCategory(ctx, projectId, categoryId)
}

func (s *ServiceImpl) AddCategory(ctx context.Context, projectId int, categoryType Type, name string) (Category, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Category{}, err
	}
	if _, err := ParseType(string(categoryType)); err != nil {
		return Category{}, rest.Invalid("type", "Type must be income or expense")
	}
	return s.add(ctx, Category{ProjectId: projectId, Type: categoryType, Name: name})
}

func (s *ServiceImpl) AddSubCategory(ctx context.Context, projectId int, parentId int, name string) (Category, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Category{}, err
	}
	parent, err := s.repo.GetCategory(ctx, projectId, parentId)
	if err != nil {
		return Category{}, err
	}
	if parent.IsSubCategory() {
		return Category{}, ErrTooDeep
	}
	return s.add(ctx, Category{ProjectId: projectId, Type: parent.Type, ParentId: &parent.Id, Name: name})
}

func (s *ServiceImpl) add(ctx context.Context, category Category) (Category, error) {
	name, err := normalizeName(category.Name)
	if err != nil {
		return Category{}, err
	}
	category.Name = name
	siblings, err := s.siblings(ctx, category)
	if err != nil {
		return Category{}, err
	}
	if nameTaken(siblings, name, 0) {
		return Category{}, ErrDuplicateCategory
	}
	category.Position = positionStep
	if len(siblings) > 0 {
		category.Position = siblings[len(siblings)-1].Position + positionStep
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return Category{}, err
	}
	if !created.IsSubCategory() {
		created.Children = make([]Category, 0)
	}
	return created, nil
}

func (s *ServiceImpl) RenameCategory(ctx context.Context, projectId int, categoryId int, name string) (Category, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Category{}, err
	}
	category, err := s.repo.GetCategory(ctx, projectId, categoryId)
	if err != nil {
		return Category{}, err
	}
	name, err = normalizeName(name)
	if err != nil {
		return Category{}, err
	}
	siblings, err := s.siblings(ctx, category)
	if err != nil {
		return Category{}, err
	}
	if nameTaken(siblings, name, categoryId) {
		return Category{}, ErrDuplicateCategory
	}
	renamed, err := s.repo.RenameCategory(ctx, projectId, categoryId, name)
	if err != nil {
		return Category{}, err
	}
	if !renamed {
		return Category{}, ErrCategoryNotFound
	}
	category.Name = name
	return category, nil
}

func (s *ServiceImpl) DeleteCategory(ctx context.Context, projectId int, categoryId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return err
	}
	category, err := s.repo.GetCategory(ctx, projectId, categoryId)
	if err != nil {
		return err
	}
	ids := []int{category.Id}
	if !category.IsSubCategory() {
		all, err := s.repo.ListCategories(ctx, projectId, category.Type)
		if err != nil {
			return err
		}
		for _, c := range all {
			if c.ParentId != nil && *c.ParentId == category.Id {
				ids = append(ids, c.Id)
			}
		}
	}
	references, err := s.repo.CountEntryReferences(ctx, projectId, ids)
	if err != nil {
		return err
	}
	if references > 0 {
		log.Debugf("category %d is used by %d entries", categoryId, references)
		return ErrCategoryInUse
	}
	deleted, err := s.repo.DeleteCategory(ctx, projectId, categoryId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ServiceImpl) MoveCategoryAfter(ctx context.Context, projectId int, categoryId int, precedingId int) ([]Category, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return nil, err
	}
	if categoryId == precedingId {
		return nil, rest.Invalid("precedingId", "A category cannot be moved after itself")
	}
	category, err := s.repo.GetCategory(ctx, projectId, categoryId)
	if err != nil {
		return nil, err
	}
	siblings, err := s.siblings(ctx, category)
	if err != nil {
		return nil, err
	}

	// siblings without the moved category, in position order
	others := make([]Category, 0, len(siblings))
	for _, c := range siblings {
		if c.Id != categoryId {
			others = append(others, c)
		}
	}

	prevIdx := -1
	if precedingId > 0 {
		prevIdx = findCategory(precedingId, others)
		if prevIdx == -1 {
			return nil, ErrCategoryNotFound
		}
	}

	prevPos, nextPos := 0, -1
	if prevIdx >= 0 {
		prevPos = others[prevIdx].Position
	}
	if prevIdx+1 < len(others) {
		nextPos = others[prevIdx+1].Position
	}

	switch {
	case nextPos == -1:
		err = s.setPosition(ctx, projectId, categoryId, prevPos+positionStep)
	case nextPos-prevPos > 1:
		err = s.setPosition(ctx, projectId, categoryId, prevPos+(nextPos-prevPos)/2)
	default:
		// no gap left between the neighbours, renumber all siblings
		reordered := make([]Category, 0, len(siblings))
		reordered = append(reordered, others[:prevIdx+1]...)
		reordered = append(reordered, category)
		reordered = append(reordered, others[prevIdx+1:]...)
		err = s.renumber(ctx, projectId, reordered)
	}
	if err != nil {
		return nil, err
	}

	flat, err := s.repo.ListCategories(ctx, projectId, category.Type)
	if err != nil {
		return nil, err
	}
	return buildTree(flat), nil
}

func (s *ServiceImpl) SeedDefaults(ctx context.Context, projectId int) error {
	for _, categoryType := range []Type{TypeIncome, TypeExpense} {
		for _, d := range defaultTree[categoryType] {
			parent, err := s.AddCategory(ctx, projectId, categoryType, d.name)
			if err != nil {
				return err
			}
			for _, child := range d.children {
				if _, err := s.AddSubCategory(ctx, projectId, parent.Id, child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *ServiceImpl) setPosition(ctx context.Context, projectId int, categoryId int, position int) error {
	updated, err := s.repo.UpdatePosition(ctx, projectId, categoryId, position)
	if err != nil {
		return err
	}
	if !updated {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ServiceImpl) renumber(ctx context.Context, projectId int, categories []Category) error {
	for i, c := range categories {
		if err := s.setPosition(ctx, projectId, c.Id, (i+1)*positionStep); err != nil {
			return err
		}
	}
	return nil
}

// siblings lists the categories sharing c's parent and type, c included
// when it is stored.
func (s *ServiceImpl) siblings(ctx context.Context, c Category) ([]Category, error) {
	all, err := s.repo.ListCategories(ctx, c.ProjectId, c.Type)
	if err != nil {
		return nil, err
	}
	siblings := make([]Category, 0)
	for _, other := range all {
		if sameParent(other.ParentId, c.ParentId) {
			siblings = append(siblings, other)
		}
	}
	sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].Position < siblings[j].Position })
	return siblings, nil
}

func sameParent(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", rest.Invalid("name", "Category name is required")
	}
	return name, nil
}

func nameTaken(siblings []Category, name string, exceptId int) bool {
	for _, c := range siblings {
		if c.Id != exceptId && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func findCategory(id int, categories []Category) int {
	for idx, c := range categories {
		if c.Id == id {
			return idx
		}
	}
	return -1
}
