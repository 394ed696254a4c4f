package llm

// BuildContractJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We use it locally to validate the model reply before decoding.
func BuildContractJSONSchema() map[string]any {
	props := map[string]any{
		"summary":       map[string]any{"type": "string", "minLength": 1},
		"client_name":   map[string]any{"type": "string"},
		"contract_type": map[string]any{"type": "string"},
		"start_date":    map[string]any{"type": "string"},
		"end_date":      map[string]any{"type": "string"},
		"key_dates": arrayOf(objectProp(
			[]string{"label", "date"},
			"label", "date",
		)),
		"products_services": arrayOf(objectProp(
			[]string{"name"},
			"name", "description", "quantity", "unit", "rate",
		)),
		"key_clauses": arrayOf(objectProp(
			[]string{"type"},
			"type", "description", "quote",
		)),
		"risk_areas": arrayOf(objectProp(
			[]string{"concern"},
			"concern", "quote",
		)),
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"summary"},
	}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

// objectProp builds an object of string fields.
func objectProp(required []string, fields ...string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
