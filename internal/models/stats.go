package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StatRow is one raw /stats row for an entity over a time window.
type StatRow struct {
	ID          string
	Impressions float64
	Clicks      float64
	Cost        float64
	Conversions float64
	ConvAmount  float64
	AvgRank     float64
}

// looseNumber decodes a JSON number whether it arrives as a number literal
// or a quoted string, which the stats endpoint mixes intermittently.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = looseNumber(v)
	return nil
}

func (r *StatRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string      `json:"id"`
		Impressions looseNumber `json:"impCnt"`
		Clicks      looseNumber `json:"clkCnt"`
		Cost        looseNumber `json:"salesAmt"`
		Conversions looseNumber `json:"ccnt"`
		ConvAmount  looseNumber `json:"convAmt"`
		AvgRank     looseNumber `json:"avgRnk"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Impressions = float64(raw.Impressions)
	r.Clicks = float64(raw.Clicks)
	r.Cost = float64(raw.Cost)
	r.Conversions = float64(raw.Conversions)
	r.ConvAmount = float64(raw.ConvAmount)
	r.AvgRank = float64(raw.AvgRank)
	return nil
}

// Stats is the derived performance summary shown on every listing surface.
type Stats struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Cost        int     `json:"cost"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	Conversions int     `json:"conversions"`
	CPA         float64 `json:"cpa"`
	ConvAmount  int     `json:"convAmt"`
	ROAS        float64 `json:"roas"`
}

// ShapeStats derives display metrics from a raw stats row. A nil row yields
// the zero summary, which is what listings show for entities with no data.
func ShapeStats(row *StatRow) Stats {
	if row == nil {
		return Stats{}
	}

	s := Stats{
		Impressions: int(row.Impressions),
		Clicks:      int(row.Clicks),
		Cost:        int(row.Cost),
		Conversions: int(row.Conversions),
		ConvAmount:  int(row.ConvAmount),
	}
	if s.Impressions > 0 {
		s.CTR = round2(float64(s.Clicks) / float64(s.Impressions) * 100)
	}
	if s.Clicks > 0 {
		s.CPC = math.Round(float64(s.Cost) / float64(s.Clicks))
	}
	if s.Conversions > 0 {
		s.CPA = math.Round(float64(s.Cost) / float64(s.Conversions))
	}
	if s.Cost > 0 {
		s.ROAS = math.Round(float64(s.ConvAmount) / float64(s.Cost) * 100)
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
