package services

import (
	"encoding/json"
	"strings"

	"consistai-backend/internal/models"
)

type RankingOutputKind int

const (
	RankingOutputEmpty RankingOutputKind = iota
	RankingOutputSingle
	RankingOutputList
)

func (k RankingOutputKind) String() string {
	switch k {
	case RankingOutputSingle:
		return "single"
	case RankingOutputList:
		return "list"
	default:
		return "empty"
	}
}

// RankingOutput is the validated shape of a ranking response. Downstream code
// only sees Items; Kind records which shape the backend actually produced.
type RankingOutput struct {
	Kind  RankingOutputKind
	Items []models.RankedResponseItem
}

// Responses returns the ranked items, wrapping a single object into a
// one-element list. Empty output yields an empty, non-nil slice.
func (o RankingOutput) Responses() []models.RankedResponseItem {
	if o.Kind == RankingOutputEmpty || len(o.Items) == 0 {
		return []models.RankedResponseItem{}
	}
	return o.Items
}

type rankedItemWire struct {
	ModelName    *string  `json:"modelName"`
	ResponseText *string  `json:"responseText"`
	Accuracy     *float64 `json:"accuracy"`
	Reason       *string  `json:"reason"`
}

// ParseRankingOutput validates raw backend text. A JSON array keeps its
// conforming elements; a single conforming object becomes Single; anything
// else, including null and empty text, is Empty.
func ParseRankingOutput(raw string) RankingOutput {
	raw = stripCodeFences(raw)
	if raw == "" || raw == "null" {
		return RankingOutput{Kind: RankingOutputEmpty}
	}

	switch raw[0] {
	case '[':
		return parseRankingList(raw)
	case '{':
		if item, ok := parseRankedItem([]byte(raw)); ok {
			return RankingOutput{Kind: RankingOutputSingle, Items: []models.RankedResponseItem{item}}
		}
		return RankingOutput{Kind: RankingOutputEmpty}
	}

	// Prose around a JSON array
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return parseRankingList(raw[start : end+1])
	}
	return RankingOutput{Kind: RankingOutputEmpty}
}

func parseRankingList(raw string) RankingOutput {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return RankingOutput{Kind: RankingOutputEmpty}
	}

	items := make([]models.RankedResponseItem, 0, len(elems))
	for _, e := range elems {
		if item, ok := parseRankedItem(e); ok {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return RankingOutput{Kind: RankingOutputEmpty}
	}
	return RankingOutput{Kind: RankingOutputList, Items: items}
}

func parseRankedItem(raw []byte) (models.RankedResponseItem, bool) {
	var w rankedItemWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.RankedResponseItem{}, false
	}
	if w.ModelName == nil || w.ResponseText == nil || w.Accuracy == nil {
		return models.RankedResponseItem{}, false
	}

	item := models.RankedResponseItem{
		ModelName:    *w.ModelName,
		ResponseText: *w.ResponseText,
		Accuracy:     clampAccuracy(*w.Accuracy),
	}
	if w.Reason != nil {
		item.Reason = *w.Reason
	}
	return item, true
}

func clampAccuracy(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
