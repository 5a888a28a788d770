package events

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	errTrialsLength      = errors.New("trial columns must match the sample count")
	errEventTrialMissing = errors.New("event is missing a trial column")
	errEventTrialUnknown = errors.New("event trial not found in samples")
	errTrialsRequired    = errors.New("at least one trial column is required")
)

// TrialColumns identifies the trial of every sample, column by column, e.g.
// {"trial": [1, 1, 2, 2]}. Events name their trial through Attrs under the same
// column names. Values are compared by their printed form, so 1 and 1.0 match.
type TrialColumns map[string][]any

// trialGroup is one trial and the indices of its samples in recording order.
type trialGroup struct {
	key     string
	values  map[string]any
	samples []int
}

func (c TrialColumns) names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// groupSamples splits n sample indices by trial, in order of first appearance.
func (c TrialColumns) groupSamples(n int) ([]*trialGroup, map[string]*trialGroup, error) {
	names := c.names()
	if len(names) == 0 {
		return nil, nil, invalid(errTrialsRequired, "got none")
	}
	for _, name := range names {
		if len(c[name]) != n {
			return nil, nil, invalid(errTrialsLength, "column %q has %d values for %d samples", name, len(c[name]), n)
		}
	}

	groups := make([]*trialGroup, 0)
	byKey := make(map[string]*trialGroup)
	values := make([]any, len(names))
	for i := 0; i < n; i++ {
		for j, name := range names {
			values[j] = c[name][i]
		}
		key := trialKey(names, values)
		group, ok := byKey[key]
		if !ok {
			group = &trialGroup{key: key, values: make(map[string]any, len(names))}
			for j, name := range names {
				group.values[name] = values[j]
			}
			groups = append(groups, group)
			byKey[key] = group
		}
		group.samples = append(group.samples, i)
	}
	return groups, byKey, nil
}

// eventKey returns the trial key of the event at row.
func (c TrialColumns) eventKey(event Event, row int) (string, error) {
	names := c.names()
	values := make([]any, len(names))
	for i, name := range names {
		value, ok := event.Attrs[name]
		if !ok {
			return "", invalid(errEventTrialMissing, "event %d has no %q", row, name)
		}
		values[i] = value
	}
	return trialKey(names, values), nil
}

func trialKey(names []string, values []any) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, values[i])
	}
	return strings.Join(parts, " ")
}

func copyValues(values map[string]any) map[string]any {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return copied
}
