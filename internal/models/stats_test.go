package models

import (
	"encoding/json"
	"testing"
)

func TestStatRowDecodesMixedNumberEncodings(t *testing.T) {
	raw := []byte(`{"id":"kwd-1","impCnt":100,"clkCnt":"7","salesAmt":"3500","ccnt":2,"convAmt":null,"avgRnk":"2.4"}`)
	var row StatRow
	if err := json.Unmarshal(raw, &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if row.ID != "kwd-1" || row.Impressions != 100 || row.Clicks != 7 || row.Cost != 3500 || row.Conversions != 2 || row.AvgRank != 2.4 {
		t.Errorf("row = %+v", row)
	}
}

func TestShapeStats(t *testing.T) {
	row := &StatRow{Impressions: 1000, Clicks: 20, Cost: 10000, Conversions: 4, ConvAmount: 50000}
	s := ShapeStats(row)

	if s.CTR != 2.0 {
		t.Errorf("CTR = %v, want 2.0", s.CTR)
	}
	if s.CPC != 500 {
		t.Errorf("CPC = %v, want 500", s.CPC)
	}
	if s.CPA != 2500 {
		t.Errorf("CPA = %v, want 2500", s.CPA)
	}
	if s.ROAS != 500 {
		t.Errorf("ROAS = %v, want 500", s.ROAS)
	}
}

func TestShapeStatsZeroSafe(t *testing.T) {
	if s := ShapeStats(nil); s != (Stats{}) {
		t.Errorf("nil row: %+v", s)
	}
	// No impressions or clicks must not divide by zero.
	if s := ShapeStats(&StatRow{Cost: 100}); s.CTR != 0 || s.CPC != 0 || s.CPA != 0 {
		t.Errorf("zero traffic: %+v", s)
	}
}
