package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"discord-analyzer/query"
)

// 报告服务的请求与响应都以 google.protobuf.Struct 传输，字段名见 json 标签。

type PivotRequest struct {
	GuildID string   `json:"guild_id,omitempty"`
	Subject string   `json:"subject,omitempty"` // user 或 channel
	Metrics []string `json:"metrics,omitempty"`
	Preset  string   `json:"preset,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

type PivotRow struct {
	Subject string   `json:"subject"`
	Cells   []string `json:"cells"`
}

type PivotReply struct {
	Subject string     `json:"subject"`
	Metrics []string   `json:"metrics"`
	Rows    []PivotRow `json:"rows"`
}

type RanksRequest struct {
	GuildID string   `json:"guild_id,omitempty"`
	Scope   string   `json:"scope,omitempty"` // server、channel 或 user
	Name    string   `json:"name,omitempty"`
	Ranks   []string `json:"ranks,omitempty"`
	Preset  string   `json:"preset,omitempty"`
}

type RanksReply struct {
	Ranks []string   `json:"ranks"`
	Rows  [][]string `json:"rows"`
}

type SeriesRequest struct {
	GuildID string   `json:"guild_id,omitempty"`
	Subject string   `json:"subject,omitempty"`
	Metric  string   `json:"metric"`
	Roles   []string `json:"roles,omitempty"`
	Sort    bool     `json:"sort,omitempty"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type SeriesReply struct {
	Points []Point `json:"points"`
}

type EmojiRequest struct {
	GuildID string `json:"guild_id,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

type EmojiRow struct {
	Rank          int    `json:"rank"`
	Emoji         string `json:"emoji"`
	InMessages    int    `json:"in_messages"`
	TopInMessages string `json:"top_in_messages"`
	AsReaction    int    `json:"as_reaction"`
	TopAsReaction string `json:"top_as_reaction"`
	TopReceiver   string `json:"top_receiver"`
	Overall       int    `json:"overall"`
	TopOverall    string `json:"top_overall"`
}

type EmojiReply struct {
	Rows []EmojiRow `json:"rows"`
}

// toStruct 通过 JSON 把任意请求/响应转换为 Struct。
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func pivotReply(t *query.Table) *PivotReply {
	reply := &PivotReply{Subject: t.Subject, Metrics: make([]string, len(t.Metrics)), Rows: []PivotRow{}}
	for i, m := range t.Metrics {
		reply.Metrics[i] = string(m)
	}
	for _, r := range t.Rows {
		row := PivotRow{Subject: r.Subject, Cells: make([]string, len(r.Cells))}
		for i, c := range r.Cells {
			row.Cells[i] = c.String()
		}
		reply.Rows = append(reply.Rows, row)
	}
	return reply
}

func ranksReply(t *query.RankTable) *RanksReply {
	reply := &RanksReply{Ranks: make([]string, len(t.Ranks)), Rows: t.Rows}
	for i, r := range t.Ranks {
		reply.Ranks[i] = string(r)
	}
	if reply.Rows == nil {
		reply.Rows = [][]string{}
	}
	return reply
}

func seriesReply(points []query.Point) *SeriesReply {
	reply := &SeriesReply{Points: make([]Point, len(points))}
	for i, p := range points {
		reply.Points[i] = Point{Label: p.Label, Value: p.Value}
	}
	return reply
}

func emojiReply(rows []query.EmojiRow) *EmojiReply {
	reply := &EmojiReply{Rows: make([]EmojiRow, len(rows))}
	for i, r := range rows {
		reply.Rows[i] = EmojiRow{
			Rank:          r.Rank,
			Emoji:         r.Emoji,
			InMessages:    r.InMessages,
			TopInMessages: r.TopInMessages.String(),
			AsReaction:    r.AsReaction,
			TopAsReaction: r.TopAsReaction.String(),
			TopReceiver:   r.TopReceiver.String(),
			Overall:       r.Overall,
			TopOverall:    r.TopOverall.String(),
		}
	}
	return reply
}
