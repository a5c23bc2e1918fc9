package category

import (
	"errors"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("a category with this name already exists")
	ErrCategoryInUse     = errors.New("category is used by budget entries")
	ErrTooDeep           = errors.New("sub-categories cannot have children")
	ErrInvalidType       = errors.New("invalid category type")
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeIncome, TypeExpense:
		return Type(s), nil
	}
	return "", ErrInvalidType
}

const positionStep = 100

type Category struct {
	Id        int
	ProjectId int
	Type      Type
	// ParentId is nil for top-level categories.
	ParentId *int
	Name     string
	Position int
	Children []Category
}

func (c Category) IsSubCategory() bool {
	return c.ParentId != nil
}

// buildTree nests a flat, position-ordered list into top-level categories
// with their sub-categories.
func buildTree(flat []Category) []Category {
	tree := make([]Category, 0)
	index := map[int]int{}
	for _, c := range flat {
		if c.ParentId == nil {
			c.Children = make([]Category, 0)
			index[c.Id] = len(tree)
			tree = append(tree, c)
		}
	}
	for _, c := range flat {
		if c.ParentId == nil {
			continue
		}
		if i, ok := index[*c.ParentId]; ok {
			tree[i].Children = append(tree[i].Children, c)
		}
	}
	return tree
}

type defaultCategory struct {
	name     string
	children []string
}

var defaultTree = map[Type][]defaultCategory{
	TypeIncome: {
		{name: "Salary"},
		{name: "Sales", children: []string{"Products", "Services"}},
		{name: "Other income"},
	},
	TypeExpense: {
		{name: "Housing", children: []string{"Rent", "Utilities", "Maintenance"}},
		{name: "Transport", children: []string{"Fuel", "Insurance"}},
		{name: "Food"},
		{name: "Taxes"},
		{name: "Loans"},
		{name: "Other expenses"},
	},
}
