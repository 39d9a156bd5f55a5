package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/command"
	"discord-analyzer/query"
)

var errNameRequired = errors.New("a name is required for channel and user scopes")

// options indexes the options of one interaction by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func (o options) boolean(name string) bool {
	if opt, ok := o[name]; ok {
		return opt.BoolValue()
	}
	return false
}

func (o options) integer(name string, def int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return def
}

// list splits a comma separated option, dropping empty entries.
func (o options) list(name string) []string {
	var out []string
	for _, part := range strings.Split(o.str(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (o options) roles() []string {
	if r := o.str(command.OptRole); r != "" {
		return []string{r}
	}
	return nil
}

// scope reads the scope and name options. Channel and user scopes need a
// name.
func (o options) scope() (query.Scope, string, error) {
	scope, err := query.ParseScope(o.str(command.OptScope))
	if err != nil {
		return "", "", err
	}
	name := o.str(command.OptName)
	if scope != query.ScopeServer && name == "" {
		return "", "", errNameRequired
	}
	return scope, name, nil
}

func scopeTitle(scope query.Scope, name string) string {
	if scope == query.ScopeServer {
		return "Server"
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(string(scope[:1]))+string(scope[1:]), name)
}

// renderReport answers a report command from e as message content.
func renderReport(e *query.Engine, cmd string, o options) (string, error) {
	switch cmd {
	case "table":
		subject, err := query.ParseSubject(o.str(command.OptSubject))
		if err != nil {
			return "", err
		}
		metrics, err := query.ResolveMetrics(subject, o.list(command.OptMetrics), o.str(command.OptPreset))
		if err != nil {
			return "", err
		}
		t, err := e.Pivot(subject, o.roles(), metrics)
		if err != nil {
			return "", err
		}
		return RenderTable(t), nil

	case "chart":
		subject, err := query.ParseSubject(o.str(command.OptSubject))
		if err != nil {
			return "", err
		}
		m, err := query.ParseMetric(subjectMetrics(subject), o.str(command.OptMetric))
		if err != nil {
			return "", err
		}
		points, err := e.Series(subject, o.roles(), m)
		if err != nil {
			return "", err
		}
		if o.boolean(command.OptSort) {
			points = query.SortDescending(points)
		}
		return RenderChart(string(m), points), nil

	case "ranks":
		scope, name, err := o.scope()
		if err != nil {
			return "", err
		}
		ranks, err := query.ResolveRanks(scope, nil, o.str(command.OptPreset))
		if err != nil {
			return "", err
		}
		rt, err := e.Ranks(scope, name, ranks)
		if err != nil {
			return "", err
		}
		return RenderRanks(scopeTitle(scope, name), rt), nil

	case "emoji":
		if token := o.str(command.OptEmoji); token != "" {
			row, err := e.EmojiSummary(token)
			if err != nil {
				return "", err
			}
			return RenderEmoji([]query.EmojiRow{row}), nil
		}
		return RenderEmoji(e.EmojiTable(o.integer(command.OptRows, query.DefaultEmojiRows))), nil

	case "activity":
		scope, name, err := o.scope()
		if err != nil {
			return "", err
		}
		hours, days, err := e.Activity(scope, name)
		if err != nil {
			return "", err
		}
		title := scopeTitle(scope, name)
		return RenderChart(title+" by hour", query.HourSeries(hours, o.boolean(command.OptTwelveHour))) + "\n" +
			RenderChart(title+" by weekday", query.DaySeries(days)), nil

	case "summary":
		scope, name, err := o.scope()
		if err != nil {
			return "", err
		}
		var fields []query.Field
		switch scope {
		case query.ScopeChannel:
			fields, err = e.ChannelSummary(name)
		case query.ScopeUser:
			fields, err = e.UserSummary(name)
		default:
			fields = e.ServerSummary()
		}
		if err != nil {
			return "", err
		}
		return RenderFields(scopeTitle(scope, name), fields), nil
	}
	return "", fmt.Errorf("unknown report %q", cmd)
}

func subjectMetrics(subject query.Subject) []query.Metric {
	if subject == query.SubjectChannel {
		return query.ChannelMetrics
	}
	return query.UserMetrics
}

func chartMetrics(subject query.Subject) []query.Metric {
	if subject == query.SubjectChannel {
		return query.ChannelChartMetrics
	}
	return query.UserChartMetrics
}
