package models

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestCounter_OrderAndTies(t *testing.T) {
	var c Counter
	c.Add("b", 2)
	c.Inc("a")
	c.Add("c", 2)
	c.Add("zero", 0)
	c.Inc("a")

	if got := c.Keys(); !slices.Equal(got, []string{"b", "a", "c", "zero"}) {
		t.Errorf("Keys() = %v", got)
	}
	if c.Total() != 6 || c.Len() != 4 {
		t.Errorf("Total()=%d Len()=%d", c.Total(), c.Len())
	}
	if key, ok := c.Max(); !ok || key != "b" {
		t.Errorf("Max() = %q, %v, want first of the tied keys", key, ok)
	}
	if got := c.Ranked(); !slices.Equal(got, []string{"b", "a", "c", "zero"}) {
		t.Errorf("Ranked() = %v", got)
	}
	if !c.Has("zero") || c.Get("missing") != 0 {
		t.Error("zero-count key should exist and missing keys read as 0")
	}
}

func TestCounter_EmptyAndNil(t *testing.T) {
	var c *Counter
	if c.Len() != 0 || c.Total() != 0 || c.Get("x") != 0 {
		t.Error("nil counter should read as empty")
	}
	if _, ok := c.Max(); ok {
		t.Error("Max() on nil counter should report !ok")
	}
	var empty Counter
	if got := empty.Ranked(); len(got) != 0 {
		t.Errorf("Ranked() = %v", got)
	}
}

func TestSumCounters(t *testing.T) {
	emoji := NewCounter()
	emoji.Add("smile", 1)
	emoji.Add("wave", 3)
	reactions := NewCounter()
	reactions.Add("heart", 4)
	reactions.Add("smile", 3)

	sum := SumCounters(&emoji, &reactions)
	if got := sum.Keys(); !slices.Equal(got, []string{"smile", "wave", "heart"}) {
		t.Errorf("Keys() = %v", got)
	}
	if key, _ := sum.Max(); key != "smile" {
		t.Errorf("Max() = %q, want smile (4, first seen)", key)
	}
}

func TestNestedCounter(t *testing.T) {
	var nc NestedCounter
	nc.Add("A", "video", 1)
	nc.Add("A", "image", 3)
	nc.Add("B", "video", 2)

	flat := nc.Flatten()
	if flat.Get("video") != 3 || flat.Get("image") != 3 {
		t.Errorf("Flatten() video=%d image=%d", flat.Get("video"), flat.Get("image"))
	}
	if key, _ := flat.Max(); key != "video" {
		t.Errorf("Max() = %q, want video", key)
	}
	totals := nc.OuterTotals()
	if totals.Get("A") != 4 || totals.Get("B") != 2 || nc.Total() != 6 {
		t.Errorf("OuterTotals() = %v, Total()=%d", totals.Keys(), nc.Total())
	}
	if nc.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
}

func TestCounter_JSONKeepsOrder(t *testing.T) {
	c := NewCounter("z", "a")
	c.Add("m", 5)
	c.Inc("a")

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"z":0,"a":1,"m":5}` {
		t.Errorf("Marshal() = %s", b)
	}

	var back Counter
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.Keys(); !slices.Equal(got, []string{"z", "a", "m"}) || back.Get("m") != 5 {
		t.Errorf("round trip keys = %v", got)
	}

	if err := json.Unmarshal([]byte(`{"x":-1}`), &back); err == nil {
		t.Error("negative counts should be rejected")
	}
}

func TestNestedCounter_JSON(t *testing.T) {
	var nc NestedCounter
	nc.Add("bob", "video", 1)
	nc.Add("amy", "image", 2)

	b, err := json.Marshal(nc)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"bob":{"video":1},"amy":{"image":2}}` {
		t.Errorf("Marshal() = %s", b)
	}
	var back NestedCounter
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.Keys(); !slices.Equal(got, []string{"bob", "amy"}) {
		t.Errorf("keys = %v", got)
	}
}

func TestOrdered_JSON(t *testing.T) {
	var o Ordered[*UserStats]
	o.Set("zed", NewUserStats())
	o.Set("amy", NewUserStats())
	o.Set("zed", &UserStats{Messages: 3})

	b, err := json.Marshal(o)
	if err != nil {
		t.Fatal(err)
	}
	var back Ordered[*UserStats]
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.Keys(); !slices.Equal(got, []string{"zed", "amy"}) {
		t.Errorf("keys = %v", got)
	}
	zed, _ := back.Get("zed")
	if zed.Messages != 3 {
		t.Errorf("zed.Messages = %d", zed.Messages)
	}
	amy, _ := back.Get("amy")
	if got := amy.ActiveDays.Keys(); !slices.Equal(got, Weekdays) {
		t.Errorf("amy days = %v", got)
	}
}
