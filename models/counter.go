package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Counter is an ordered key -> count association.
// Keys keep the order in which they were first added. Every ranking and
// argmax in the query layer breaks ties by that order, so it is part of
// the observable output and survives JSON round trips.
// The zero value is an empty counter ready to use.
type Counter struct {
	keys   []string
	counts map[string]int
}

// NewCounter returns a counter with the given keys pre-set to zero.
func NewCounter(keys ...string) Counter {
	c := Counter{}
	for _, k := range keys {
		c.Add(k, 0)
	}
	return c
}

// Add increases key by n, registering the key even when n is zero.
func (c *Counter) Add(key string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

// Inc increases key by one.
func (c *Counter) Inc(key string) {
	c.Add(key, 1)
}

// Get returns the count for key, 0 when absent.
func (c *Counter) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

// Has reports whether key was ever added.
func (c *Counter) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.counts[key]
	return ok
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in first-insertion order.
func (c *Counter) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Total returns the sum of all counts.
func (c *Counter) Total() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, k := range c.keys {
		total += c.counts[k]
	}
	return total
}

// Max returns the key with the highest count. The first key reaching the
// maximum wins. ok is false for an empty counter.
func (c *Counter) Max() (key string, ok bool) {
	if c.Len() == 0 {
		return "", false
	}
	best := c.keys[0]
	for _, k := range c.keys[1:] {
		if c.counts[k] > c.counts[best] {
			best = k
		}
	}
	return best, true
}

// Ranked returns the keys sorted by descending count. Equal counts keep
// their insertion order.
func (c *Counter) Ranked() []string {
	keys := c.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	return keys
}

// Clone returns an independent copy.
func (c *Counter) Clone() Counter {
	out := Counter{}
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		out.Add(k, c.counts[k])
	}
	return out
}

// SumCounters returns the key-wise sum of the given counters. Key order is
// the first-seen order walking the counters left to right.
func SumCounters(cs ...*Counter) Counter {
	out := Counter{}
	for _, c := range cs {
		if c == nil {
			continue
		}
		for _, k := range c.keys {
			out.Add(k, c.counts[k])
		}
	}
	return out
}

// MarshalJSON encodes the counter as a JSON object in insertion order.
func (c Counter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		fmt.Fprintf(&buf, ":%d", c.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the input.
func (c *Counter) UnmarshalJSON(data []byte) error {
	*c = Counter{}
	return decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("decode count for %q: %w", key, err)
		}
		if n < 0 {
			return fmt.Errorf("negative count %d for %q", n, key)
		}
		c.Add(key, n)
		return nil
	})
}

// NestedCounter is an ordered outer key -> Counter association, used for
// the author -> attachment type -> count dimension.
type NestedCounter struct {
	keys  []string
	inner map[string]*Counter
}

// Add increases inner under outer by n.
func (nc *NestedCounter) Add(outer, inner string, n int) {
	if nc.inner == nil {
		nc.inner = make(map[string]*Counter)
	}
	c, ok := nc.inner[outer]
	if !ok {
		c = &Counter{}
		nc.inner[outer] = c
		nc.keys = append(nc.keys, outer)
	}
	c.Add(inner, n)
}

// Get returns the inner counter for outer, nil when absent.
func (nc *NestedCounter) Get(outer string) *Counter {
	if nc == nil || nc.inner == nil {
		return nil
	}
	return nc.inner[outer]
}

// Len returns the number of outer keys.
func (nc *NestedCounter) Len() int {
	if nc == nil {
		return 0
	}
	return len(nc.keys)
}

// Keys returns the outer keys in first-insertion order.
func (nc *NestedCounter) Keys() []string {
	if nc == nil {
		return nil
	}
	return append([]string(nil), nc.keys...)
}

// Total returns the sum over every inner counter.
func (nc *NestedCounter) Total() int {
	total := 0
	for _, k := range nc.Keys() {
		total += nc.inner[k].Total()
	}
	return total
}

// Flatten sums the inner counters key-wise, in outer order.
func (nc *NestedCounter) Flatten() Counter {
	cs := make([]*Counter, 0, nc.Len())
	for _, k := range nc.Keys() {
		cs = append(cs, nc.inner[k])
	}
	return SumCounters(cs...)
}

// OuterTotals returns outer key -> sum of its inner counter.
func (nc *NestedCounter) OuterTotals() Counter {
	out := Counter{}
	for _, k := range nc.Keys() {
		out.Add(k, nc.inner[k].Total())
	}
	return out
}

// Clone returns an independent copy.
func (nc *NestedCounter) Clone() NestedCounter {
	out := NestedCounter{}
	for _, outer := range nc.Keys() {
		c := nc.inner[outer]
		for _, k := range c.keys {
			out.Add(outer, k, c.counts[k])
		}
	}
	return out
}

func (nc NestedCounter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range nc.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := nc.inner[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (nc *NestedCounter) UnmarshalJSON(data []byte) error {
	*nc = NestedCounter{}
	return decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var c Counter
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("decode counter for %q: %w", key, err)
		}
		if nc.inner == nil {
			nc.inner = make(map[string]*Counter)
		}
		if _, dup := nc.inner[key]; !dup {
			nc.keys = append(nc.keys, key)
		}
		nc.inner[key] = &c
		return nil
	})
}

// decodeOrderedObject walks a JSON object member by member so callers can
// keep the key order of the document.
func decodeOrderedObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
