package query

import (
	"context"
	"slices"

	"notesum/internal/todo"
)

// NotebookResolver looks up the parent of a notebook. An empty id with a
// nil error means the notebook has no parent (or could not be found); the
// ancestor walk treats both the same way and stops.
type NotebookResolver interface {
	ResolveParentNotebook(ctx context.Context, notebookID string) (string, error)
}

// maxAncestorHops bounds the ancestor walk so a cyclic parent relationship
// reported by the resolver cannot spin forever.
const maxAncestorHops = 512

// Filter keeps the todos matching item, preserving input order. The
// resolver is only consulted for recursive notebook queries and its
// results are memoized for the duration of this call; notebook structure
// may change between refreshes, so the cache never outlives one Filter.
func Filter(ctx context.Context, todos []todo.Todo, item Item, resolver NotebookResolver) ([]todo.Todo, error) {
	ev := evaluator{resolver: resolver, parents: map[string]string{}}
	filtered := make([]todo.Todo, 0, len(todos))
	for _, t := range todos {
		ok, err := ev.match(ctx, t, item)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Match reports whether a single todo satisfies the query.
func Match(ctx context.Context, t todo.Todo, item Item, resolver NotebookResolver) (bool, error) {
	ev := evaluator{resolver: resolver, parents: map[string]string{}}
	return ev.match(ctx, t, item)
}

type evaluator struct {
	resolver NotebookResolver
	parents  map[string]string
}

func (e *evaluator) match(ctx context.Context, t todo.Todo, item Item) (bool, error) {
	var matched bool
	switch item.Kind {
	case KindCategory:
		matched = t.Category == item.Value
	case KindTag:
		matched = slices.Contains(t.Tags, item.Value)
	case KindNote:
		matched = t.NoteID == item.Value
	case KindStatus:
		matched = t.Status() == item.Value
	case KindNotebook:
		var err error
		matched, err = e.matchNotebook(ctx, t, item)
		if err != nil {
			return false, err
		}
	case KindAnd:
		matched = true
		for _, child := range item.Children {
			ok, err := e.match(ctx, t, child)
			if err != nil {
				return false, err
			}
			if !ok {
				matched = false
				break
			}
		}
	case KindOr:
		for _, child := range item.Children {
			ok, err := e.match(ctx, t, child)
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				break
			}
		}
	}
	if item.Negated {
		matched = !matched
	}
	return matched, nil
}

// matchNotebook checks the direct parent, then for recursive queries walks
// the ancestor chain. A failed or absent lookup ends the chain without
// matching; only context cancellation is surfaced as an error.
func (e *evaluator) matchNotebook(ctx context.Context, t todo.Todo, item Item) (bool, error) {
	if !item.Recursive {
		return t.NotebookID == item.Value, nil
	}
	seen := map[string]bool{}
	current := t.NotebookID
	for hops := 0; current != "" && hops < maxAncestorHops; hops++ {
		if current == item.Value {
			return true, nil
		}
		if seen[current] {
			break
		}
		seen[current] = true
		parent, cached := e.parents[current]
		if !cached {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			if e.resolver == nil {
				parent = ""
			} else if p, err := e.resolver.ResolveParentNotebook(ctx, current); err != nil {
				parent = ""
			} else {
				parent = p
			}
			e.parents[current] = parent
		}
		current = parent
	}
	return false, nil
}
