package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// StripCodeFences extracts the JSON payload from a reply that may be wrapped in
// markdown fences or surrounded by prose.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if _, after, ok := strings.Cut(s, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(s, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if !strings.HasPrefix(s, "{") {
		if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
			return s[i : j+1]
		}
	}
	return s
}

// MissingSummary stands in for a summary the model left out or sent as null.
const MissingSummary = "Summary not available"

var (
	topLevelStrings = []string{"summary", "client_name", "contract_type", "start_date", "end_date"}

	listFields = map[string][]string{
		"key_dates":         {"label", "date"},
		"products_services": {"name", "description", "quantity", "unit", "rate"},
		"key_clauses":       {"type", "description", "quote"},
		"risk_areas":        {"concern", "quote"},
	}

	// first field of each list item that must be present
	listKey = map[string]string{
		"key_dates":         "date",
		"products_services": "name",
		"key_clauses":       "type",
		"risk_areas":        "concern",
	}

	// per-list synonyms the model sometimes uses for item fields
	itemSynonyms = map[string]map[string]string{
		"products_services": {"product_name": "name", "price": "rate", "amount": "quantity"},
		"key_clauses":       {"clause_type": "type", "title": "type"},
		"risk_areas":        {"risk": "concern", "description": "concern"},
		"key_dates":         {"event": "label", "name": "label", "value": "date"},
	}
)

// NormalizeAnalysisJSON
// - Renames known synonyms (clauses -> key_clauses, risks -> risk_areas, ...)
// - Drops null/empty values and items missing their key field
// - Fills a missing summary with MissingSummary
// - Coerces numbers/bools to strings (quantity, rate)
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAnalysisJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms
	renamed("client", "client_name")
	renamed("customer", "client_name")
	renamed("type", "contract_type")
	renamed("clauses", "key_clauses")
	renamed("risks", "risk_areas")
	renamed("products", "products_services")
	renamed("services", "products_services")
	renamed("dates", "key_dates")
	renamed("important_dates", "key_dates")

	// 2) scalar fields
	for _, k := range topLevelStrings {
		v, ok := m[k]
		if !ok {
			continue
		}
		s, keep := coerceString(v)
		if !keep {
			delete(m, k)
			dropped = append(dropped, k+"(empty)")
			continue
		}
		m[k] = s
	}
	if _, ok := m["summary"]; !ok {
		m["summary"] = MissingSummary
		dropped = append(dropped, "summary(filled)")
	}

	// 3) list fields
	for k, fields := range listFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			delete(m, k)
			dropped = append(dropped, k+"(type)")
			continue
		}
		allowed := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			allowed[f] = struct{}{}
		}
		out := make([]any, 0, len(items))
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("%s[%d](type)", k, i))
				continue
			}
			for from, to := range itemSynonyms[k] {
				if fv, ok := obj[from]; ok {
					if _, exists := obj[to]; !exists {
						obj[to] = fv
					}
					delete(obj, from)
				}
			}
			clean := make(map[string]any, len(fields))
			for fk, fv := range obj {
				if _, ok := allowed[fk]; !ok {
					continue
				}
				if s, keep := coerceString(fv); keep {
					clean[fk] = s
				}
			}
			if _, ok := clean[listKey[k]]; !ok {
				dropped = append(dropped, fmt.Sprintf("%s[%d](missing %s)", k, i, listKey[k]))
				continue
			}
			// fill the other required pair member for dates
			if k == "key_dates" {
				if _, ok := clean["label"]; !ok {
					clean["label"] = "Date"
				}
			}
			out = append(out, clean)
		}
		m[k] = out
	}

	// 4) remove unknown keys
	allowed := map[string]struct{}{}
	for _, k := range topLevelStrings {
		allowed[k] = struct{}{}
	}
	for k := range listFields {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.analyze.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// coerceString turns scalars into trimmed strings; false means drop the value.
func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return "", false
		}
		return s, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
