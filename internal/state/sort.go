package state

type SortBy int

const (
	SortByName SortBy = iota
	SortBySize
	SortByModified
	SortByExtension
)

type SortOptions struct {
	By        SortBy
	Ascending bool
	DirsFirst bool
}

func DefaultSort() SortOptions {
	return SortOptions{By: SortByName, Ascending: true, DirsFirst: true}
}

func (o *SortOptions) CycleBy() {
	o.By = (o.By + 1) % 4
}

func (o *SortOptions) ToggleOrder() {
	o.Ascending = !o.Ascending
}

func (o *SortOptions) ToggleDirsFirst() {
	o.DirsFirst = !o.DirsFirst
}
