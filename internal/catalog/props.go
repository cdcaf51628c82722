// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

// Property payload builders for the catalog API. Each returns the JSON
// shape the pinned API version expects for that property type.

func titleProp(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func richTextProp(text string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func numberProp(n int) map[string]any {
	return map[string]any{"number": n}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func multiSelectProp(names []string) map[string]any {
	opts := make([]map[string]any, 0, len(names))
	for _, name := range names {
		opts = append(opts, map[string]any{"name": name})
	}
	return map[string]any{"multi_select": opts}
}

func dateProp(isoDate string) map[string]any {
	return map[string]any{"date": map[string]any{"start": isoDate}}
}

func urlProp(u string) map[string]any {
	return map[string]any{"url": u}
}
