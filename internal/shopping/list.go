package shopping

import (
	"strings"
	"time"

	"fridge-chef/internal/shared"
)

// List is the shopping list. Items with the same name are kept as separate
// rows. It is not safe for concurrent use.
type List struct {
	items []Item
	now   func() time.Time
}

// NewList creates an empty shopping list.
func NewList() *List {
	return &List{now: time.Now}
}

// Add appends an unchecked item. Blank names are ignored.
func (l *List) Add(name string) (Item, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, false
	}
	item := Item{ID: shared.NewID(l.now()), Name: name}
	l.items = append(l.items, item)
	return item, true
}

// AddAll appends one unchecked item per non-blank name and returns the new items.
func (l *List) AddAll(names []string) []Item {
	added := make([]Item, 0, len(names))
	for _, name := range names {
		if item, ok := l.Add(name); ok {
			added = append(added, item)
		}
	}
	return added
}

// Toggle flips the checked flag of the item with the given id.
func (l *List) Toggle(id string) bool {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Checked = !l.items[i].Checked
			return true
		}
	}
	return false
}

// Remove deletes the item with the given id.
func (l *List) Remove(id string) bool {
	for i, item := range l.items {
		if item.ID == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the list if the confirmer agrees. It reports whether the list
// was cleared.
func (l *List) Clear(c Confirmer) bool {
	if c == nil || !c.Confirm(ClearPrompt) {
		return false
	}
	l.items = nil
	return true
}

// Items returns a copy of the items in insertion order.
func (l *List) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int { return len(l.items) }

// Completed counts checked items.
func (l *List) Completed() int {
	n := 0
	for _, item := range l.items {
		if item.Checked {
			n++
		}
	}
	return n
}

// Pending counts unchecked items.
func (l *List) Pending() int { return len(l.items) - l.Completed() }
