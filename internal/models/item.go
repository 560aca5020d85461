package models

import "fmt"

// Category groups a project's files by role.
type Category int

const (
	CategorySources Category = iota
	CategoryHeaders
	CategoryOthers
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategorySources, CategoryHeaders, CategoryOthers}
}

// IsValid checks if the category is one of the three known values
func (c Category) IsValid() bool {
	return c >= CategorySources && c <= CategoryOthers
}

// String returns the display label of the category node.
func (c Category) String() string {
	switch c {
	case CategorySources:
		return "Sources"
	case CategoryHeaders:
		return "Headers"
	case CategoryOthers:
		return "Others"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// TagName returns the tag name used for the category in the project file.
func (c Category) TagName() string {
	switch c {
	case CategorySources:
		return "source"
	case CategoryHeaders:
		return "header"
	default:
		return "other"
	}
}

// ItemKind returns the kind of the category node itself.
func (c Category) ItemKind() ItemKind {
	switch c {
	case CategorySources:
		return ItemSourceCategory
	case CategoryHeaders:
		return ItemHeaderCategory
	default:
		return ItemOtherCategory
	}
}

// FileKind returns the kind of file nodes stored under the category.
func (c Category) FileKind() ItemKind {
	switch c {
	case CategorySources:
		return ItemSourceFile
	case CategoryHeaders:
		return ItemHeaderFile
	default:
		return ItemOtherFile
	}
}

// NormalizeHint reduces a template hint to one the category accepts.
// Sources accept Main, headers accept the header family, others accept nothing.
func (c Category) NormalizeHint(h TemplateHint) TemplateHint {
	switch c {
	case CategorySources:
		if h == HintMain {
			return h
		}
	case CategoryHeaders:
		switch h {
		case HintHeader, HintHeaderPrefixed, HintLibHeader, HintLibHeaderPrefixed:
			return h
		}
	}
	return HintNone
}

// ParseCategory parses a category from a label or tag name.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "source", "sources", "Sources", "src":
		return CategorySources, nil
	case "header", "headers", "Headers", "inc":
		return CategoryHeaders, nil
	case "other", "others", "Others":
		return CategoryOthers, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be source, header or other)", s)
	}
}

// ItemKind tags a node of the project tree.
type ItemKind int

const (
	ItemProjectRoot ItemKind = iota
	ItemSourceCategory
	ItemHeaderCategory
	ItemOtherCategory
	ItemSourceFile
	ItemHeaderFile
	ItemOtherFile
)

// IsFile reports whether the kind is one of the file kinds
func (k ItemKind) IsFile() bool {
	return k == ItemSourceFile || k == ItemHeaderFile || k == ItemOtherFile
}

// IsCategory reports whether the kind is one of the category kinds
func (k ItemKind) IsCategory() bool {
	return k == ItemSourceCategory || k == ItemHeaderCategory || k == ItemOtherCategory
}

func (k ItemKind) String() string {
	switch k {
	case ItemProjectRoot:
		return "project"
	case ItemSourceCategory:
		return "source-category"
	case ItemHeaderCategory:
		return "header-category"
	case ItemOtherCategory:
		return "other-category"
	case ItemSourceFile:
		return "source-file"
	case ItemHeaderFile:
		return "header-file"
	case ItemOtherFile:
		return "other-file"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// TemplateHint asks the file creator to pre-fill a new file from a template.
type TemplateHint int

const (
	HintNone TemplateHint = iota
	HintMain
	HintHeader
	HintHeaderPrefixed
	HintLibHeader
	HintLibHeaderPrefixed
)

// Prefixed reports whether the hint puts a prefix in front of the include guard.
func (h TemplateHint) Prefixed() bool {
	return h == HintHeaderPrefixed || h == HintLibHeaderPrefixed
}

func (h TemplateHint) String() string {
	switch h {
	case HintNone:
		return "none"
	case HintMain:
		return "main"
	case HintHeader:
		return "header"
	case HintHeaderPrefixed:
		return "header-prefixed"
	case HintLibHeader:
		return "lib-header"
	case HintLibHeaderPrefixed:
		return "lib-header-prefixed"
	default:
		return fmt.Sprintf("TemplateHint(%d)", int(h))
	}
}
