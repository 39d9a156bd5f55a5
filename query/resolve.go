package query

import (
	"fmt"
	"slices"
	"strings"
)

// Subject selects the rows of a pivot table or series.
type Subject string

const (
	SubjectUser    Subject = "user"
	SubjectChannel Subject = "channel"
)

// ParseSubject accepts "user"/"users" and "channel"/"channels".
func ParseSubject(s string) (Subject, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "users", "":
		return SubjectUser, nil
	case "channel", "channels":
		return SubjectChannel, nil
	}
	return "", fmt.Errorf("%w: subject %q", ErrUnknownSubject, s)
}

// ParseScope accepts "server", "channel" and "user".
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeServer, "":
		return ScopeServer, nil
	case ScopeChannel:
		return ScopeChannel, nil
	case ScopeUser:
		return ScopeUser, nil
	}
	return "", fmt.Errorf("%w: scope %q", ErrUnknownSubject, s)
}

// normName folds "Characters per message", "characters_per_message" and
// "characters-per-message" to the same key.
func normName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", " ", "-", " ").Replace(s)
}

// ParseMetric finds the metric called name among candidates.
func ParseMetric(candidates []Metric, name string) (Metric, error) {
	want := normName(name)
	for _, m := range candidates {
		if normName(string(m)) == want {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// ResolveMetrics turns explicit metric names or a preset name into columns.
// With neither it returns every column of subject.
func ResolveMetrics(subject Subject, names []string, preset string) ([]Metric, error) {
	all, presets := UserMetrics, UserPresets
	if subject == SubjectChannel {
		all, presets = ChannelMetrics, ChannelPresets
	}
	if len(names) > 0 {
		out := make([]Metric, 0, len(names))
		for _, n := range names {
			m, err := ParseMetric(all, n)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}
	if preset != "" {
		p, ok := FindPreset(presets, strings.ToLower(preset))
		if !ok {
			return nil, fmt.Errorf("%w: preset %q", ErrUnknownMetric, preset)
		}
		return p.Metrics, nil
	}
	return all, nil
}

// ResolveRanks turns explicit rank names or a rank preset into columns
// valid for scope. A preset applied to a user keeps the ranks a user has.
func ResolveRanks(scope Scope, names []string, preset string) ([]Rank, error) {
	all := ChannelRankColumns
	if scope == ScopeUser {
		all = UserRankColumns
	}
	if len(names) > 0 {
		out := make([]Rank, 0, len(names))
		for _, n := range names {
			idx := slices.IndexFunc(all, func(r Rank) bool { return normName(string(r)) == normName(n) })
			if idx < 0 {
				return nil, fmt.Errorf("%w: rank %q", ErrUnknownMetric, n)
			}
			out = append(out, all[idx])
		}
		return out, nil
	}
	if preset != "" {
		p, ok := FindRankPreset(strings.ToLower(preset))
		if !ok {
			return nil, fmt.Errorf("%w: rank preset %q", ErrUnknownMetric, preset)
		}
		var out []Rank
		for _, r := range p.Ranks {
			if slices.Contains(all, r) {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: rank preset %q has no %s ranks", ErrUnknownMetric, preset, scope)
		}
		return out, nil
	}
	return all, nil
}

// Pivot builds the user or channel table. roles only applies to users and
// defaults to DefaultRoleFilter.
func (e *Engine) Pivot(subject Subject, roles []string, metrics []Metric) (*Table, error) {
	if subject == SubjectChannel {
		return e.ChannelTable(metrics)
	}
	if len(roles) == 0 {
		roles = DefaultRoleFilter
	}
	return e.UserTable(roles, metrics)
}

// Series extracts one numeric column of the user or channel table.
func (e *Engine) Series(subject Subject, roles []string, m Metric) ([]Point, error) {
	if subject == SubjectChannel {
		return e.ChannelSeries(m)
	}
	if len(roles) == 0 {
		roles = DefaultRoleFilter
	}
	return e.UserSeries(roles, m)
}

// Ranks builds the rank table of the server, a channel or a user.
func (e *Engine) Ranks(scope Scope, name string, ranks []Rank) (*RankTable, error) {
	switch scope {
	case ScopeChannel:
		return e.ChannelRanks(name, ranks)
	case ScopeUser:
		return e.UserRanks(name, ranks)
	}
	return e.ServerRanks(ranks)
}
