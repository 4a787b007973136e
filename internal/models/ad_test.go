package models

import (
	"encoding/json"
	"testing"
)

func TestAdContentUnwrapsDoubleEncoding(t *testing.T) {
	plain := Ad{RawContent: json.RawMessage(`{"headline":"Summer Sale","description":"Up to 50% off"}`)}
	doubled := Ad{RawContent: json.RawMessage(`"{\"headline\":\"Summer Sale\",\"description\":\"Up to 50% off\"}"`)}

	for name, ad := range map[string]Ad{"object": plain, "string": doubled} {
		t.Run(name, func(t *testing.T) {
			c, err := ad.Content()
			if err != nil {
				t.Fatalf("Content() error = %v", err)
			}
			if c.Headline != "Summer Sale" || c.Description != "Up to 50% off" {
				t.Errorf("creative = %+v", c)
			}
		})
	}
}

func TestAdContentKeepsUnknownFields(t *testing.T) {
	ad := Ad{RawContent: json.RawMessage(`{"headline":"H","description":"D","finalUrl":"https://x.example"}`)}
	c, err := ad.Content()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Remainder["finalUrl"]; !ok {
		t.Errorf("Remainder = %v, want finalUrl preserved", c.Remainder)
	}
}

func TestAdContentEmpty(t *testing.T) {
	for name, raw := range map[string]json.RawMessage{
		"nil":          nil,
		"empty string": json.RawMessage(`""`),
	} {
		t.Run(name, func(t *testing.T) {
			ad := Ad{RawContent: raw}
			c, err := ad.Content()
			if err != nil {
				t.Fatalf("Content() error = %v", err)
			}
			if c.Headline != "" {
				t.Errorf("headline = %q", c.Headline)
			}
		})
	}
}

func TestAdSignatureClustersByCopy(t *testing.T) {
	a := Ad{ID: "ad-1", RawContent: json.RawMessage(`{"headline":"H","description":"D","pcUrl":"https://a.example"}`)}
	b := Ad{ID: "ad-2", RawContent: json.RawMessage(`{"headline":"H","description":"D","pcUrl":"https://b.example"}`)}
	c := Ad{ID: "ad-3", RawContent: json.RawMessage(`{"headline":"Other","description":"D"}`)}

	if a.Signature() != b.Signature() {
		t.Error("same copy produced different signatures")
	}
	if a.Signature() == c.Signature() {
		t.Error("different headlines produced the same signature")
	}
}

func TestSummarizeDegradesGracefully(t *testing.T) {
	ad := Ad{ID: "ad-1", AdGroupID: "grp-1", RawContent: json.RawMessage(`not json`), UserLock: true}
	s := ad.Summarize()
	if s.Headline != "-" || s.Description != "-" {
		t.Errorf("summary = %+v, want placeholder copy", s)
	}
	if s.Type != "TEXT" {
		t.Errorf("type = %q, want TEXT default", s.Type)
	}
	if !s.Paused {
		t.Error("userLock not carried to Paused")
	}
}
