// Package reference enumerates categorical choices from the training reference table.
package reference

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"loan-approval/internal/models"
)

// CategorySource yields the valid choices for a categorical column.
type CategorySource interface {
	ChoicesFor(column string) []string
}

// Lister reads the distinct non-null values of a column from a backing store.
type Lister interface {
	ListDistinct(ctx context.Context, column string) ([]string, error)
}

// Choices is an immutable snapshot of choice sets. A nil *Choices has no choices.
type Choices struct {
	values map[string][]string
}

// NewChoices copies values into a new snapshot. Each set is sorted.
func NewChoices(values map[string][]string) *Choices {
	c := &Choices{values: make(map[string][]string, len(values))}
	for col, vals := range values {
		cp := append([]string(nil), vals...)
		sort.Strings(cp)
		c.values[col] = cp
	}
	return c
}

// Snapshot loads every column from lister concurrently.
func Snapshot(ctx context.Context, lister Lister, columns []string) (*Choices, error) {
	results := make([][]string, len(columns))

	g, gctx := errgroup.WithContext(ctx)
	for i, col := range columns {
		g.Go(func() error {
			vals, err := lister.ListDistinct(gctx, col)
			if err != nil {
				return fmt.Errorf("list %s: %w", col, err)
			}
			results[i] = vals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := make(map[string][]string, len(columns))
	for i, col := range columns {
		values[col] = results[i]
	}
	return NewChoices(values), nil
}

// ChoicesFor returns a copy of the choice set for column. Previous default
// choices are fixed; unknown columns have none.
func (c *Choices) ChoicesFor(column string) []string {
	if column == models.ColPreviousDefaults {
		return append([]string(nil), models.PreviousDefaultChoices...)
	}
	if c == nil {
		return nil
	}
	return append([]string(nil), c.values[column]...)
}

// All returns every categorical choice set, including previous defaults.
func (c *Choices) All() map[string][]string {
	out := map[string][]string{
		models.ColPreviousDefaults: c.ChoicesFor(models.ColPreviousDefaults),
	}
	for _, col := range models.CategoricalColumns {
		out[col] = c.ChoicesFor(col)
	}
	return out
}

// sortedUnique drops nulls and duplicates and sorts the rest.
func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if isNull(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
