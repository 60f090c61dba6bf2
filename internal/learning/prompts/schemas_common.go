package prompts

func ObjectSchema(properties map[string]any, required []string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func StringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func StringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": StringSchema(),
	}
}

func FixedArraySchema(items map[string]any, n int) map[string]any {
	return map[string]any{
		"type":     "array",
		"items":    items,
		"minItems": n,
		"maxItems": n,
	}
}
