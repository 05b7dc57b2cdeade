package listedit

// Editor is the editing state of one collection: its items and at most one open
// draft. Editors are values; every method returns a new Editor so that edit
// sessions on different collections never share state.
type Editor[T any] struct {
	items []T
	draft *Draft[T]
	clone func(T) T
}

// NewEditor creates an editor over items. clone, when non-nil, is used to copy
// records that own slices so drafts never alias stored elements.
func NewEditor[T any](items []T, clone func(T) T) Editor[T] {
	e := Editor[T]{clone: clone}
	e.items = e.copyAll(items)
	return e
}

// Items returns a copy of the collection
func (e Editor[T]) Items() []T {
	return e.copyAll(e.items)
}

// Len returns the number of items
func (e Editor[T]) Len() int {
	return len(e.items)
}

// Draft returns the open draft, or nil
func (e Editor[T]) Draft() *Draft[T] {
	if e.draft == nil {
		return nil
	}
	d := *e.draft
	d.Record = e.copy(d.Record)
	return &d
}

// Add opens a draft for a new record
func (e Editor[T]) Add(record T) Editor[T] {
	e.draft = Add(e.copy(record))
	return e
}

// Edit opens a draft on the element at index. Out-of-range indexes leave the editor unchanged.
func (e Editor[T]) Edit(index int) Editor[T] {
	if index < 0 || index >= len(e.items) {
		return e
	}
	return e.EditWith(e.items[index], index)
}

// EditWith opens a draft holding record tagged with index
func (e Editor[T]) EditWith(record T, index int) Editor[T] {
	e.draft = Edit(e.copy(record), index)
	return e
}

// Update applies fn to a copy of the open draft. Without a draft it is a no-op.
func (e Editor[T]) Update(fn func(*T)) Editor[T] {
	if e.draft == nil {
		return e
	}
	d := *e.draft
	d.Record = e.copy(d.Record)
	fn(&d.Record)
	e.draft = &d
	return e
}

// Save commits the open draft and closes it. Without a draft it is a no-op.
func (e Editor[T]) Save() Editor[T] {
	if e.draft == nil {
		return e
	}
	e.items = Save(e.draft, e.items)
	e.draft = nil
	return e
}

// Cancel discards the open draft
func (e Editor[T]) Cancel() Editor[T] {
	e.draft = nil
	return e
}

// Delete removes the element at index
func (e Editor[T]) Delete(index int) Editor[T] {
	e.items = Delete(index, e.items)
	return e
}

// Move swaps the element at index with its neighbour
func (e Editor[T]) Move(index int, dir Direction) Editor[T] {
	e.items = Move(index, dir, e.items)
	return e
}

// Replace swaps the whole collection, closing any draft
func (e Editor[T]) Replace(items []T) Editor[T] {
	e.items = e.copyAll(items)
	e.draft = nil
	return e
}

func (e Editor[T]) copy(v T) T {
	if e.clone == nil {
		return v
	}
	return e.clone(v)
}

func (e Editor[T]) copyAll(items []T) []T {
	out := make([]T, len(items))
	for i, v := range items {
		out[i] = e.copy(v)
	}
	return out
}
