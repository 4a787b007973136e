package models

import (
	"bytes"
	"encoding/json"
)

// Ad is a creative owned by an ad group. The upstream nests the creative
// content under "ad", sometimes as an object and sometimes double-encoded
// as a JSON string; RawContent keeps whichever form arrived so clones can
// resubmit the content byte-for-byte.
type Ad struct {
	ID         string          `json:"nccAdId"`
	AdGroupID  string          `json:"nccAdgroupId"`
	Type       string          `json:"type"`
	RawContent json.RawMessage `json:"ad"`
	UserLock   bool            `json:"userLock"`
}

// Creative is the structured content of a text ad. Remainder preserves any
// fields beyond the known set so nothing is lost on a round trip.
type Creative struct {
	Headline    string `json:"headline"`
	Description string `json:"description"`
	PCURL       string `json:"pcUrl,omitempty"`
	MobileURL   string `json:"mobileUrl,omitempty"`

	Remainder map[string]json.RawMessage `json:"-"`
}

// Content decodes the nested creative payload, unwrapping a double-encoded
// JSON string if the upstream returned one.
func (a *Ad) Content() (*Creative, error) {
	raw, err := unwrapNested(a.RawContent)
	if err != nil {
		return nil, err
	}

	var c Creative
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err == nil {
		delete(all, "headline")
		delete(all, "description")
		delete(all, "pcUrl")
		delete(all, "mobileUrl")
		if len(all) > 0 {
			c.Remainder = all
		}
	}
	return &c, nil
}

// ContentJSON returns the creative payload as a plain JSON object,
// regardless of how the upstream encoded it. Used verbatim when cloning.
func (a *Ad) ContentJSON() (json.RawMessage, error) {
	return unwrapNested(a.RawContent)
}

// Signature identifies a creative by its visible copy so near-duplicate ads
// across groups can be clustered and managed together.
func (a *Ad) Signature() string {
	c, err := a.Content()
	if err != nil {
		return string(a.RawContent)
	}
	return "[" + c.Headline + "] " + c.Description
}

// unwrapNested handles payloads the upstream serialized twice: a JSON
// string whose contents are themselves JSON.
func unwrapNested(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("{}"), nil
	}
	if trimmed[0] != '"' {
		return trimmed, nil
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return nil, err
	}
	if inner == "" {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(inner), nil
}

// AdSummary is the API-surface shape of an ad with the content flattened.
type AdSummary struct {
	ID          string `json:"nccAdId"`
	AdGroupID   string `json:"nccAdGroupId"`
	Type        string `json:"type"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	PCURL       string `json:"pcUrl"`
	MobileURL   string `json:"mobileUrl"`
	Paused      bool   `json:"status"`
}

// Summarize flattens an Ad into its API shape. Undecodable content degrades
// to placeholder copy rather than failing the listing.
func (a *Ad) Summarize() AdSummary {
	s := AdSummary{
		ID:          a.ID,
		AdGroupID:   a.AdGroupID,
		Type:        a.Type,
		Headline:    "-",
		Description: "-",
		Paused:      a.UserLock,
	}
	if s.Type == "" {
		s.Type = "TEXT"
	}
	if c, err := a.Content(); err == nil {
		if c.Headline != "" {
			s.Headline = c.Headline
		}
		if c.Description != "" {
			s.Description = c.Description
		}
		s.PCURL = c.PCURL
		s.MobileURL = c.MobileURL
	}
	return s
}
