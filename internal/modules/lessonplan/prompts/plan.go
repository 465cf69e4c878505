package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PlanKeys are the fields every generated plan must carry, in document order.
var PlanKeys = []string{"activityName", "objectives", "materials", "introduction", "activity", "game", "closure"}

// Plan is the generator's structured response.
type Plan struct {
	ActivityName string `json:"activityName"`
	Objectives   string `json:"objectives"`
	Materials    string `json:"materials"`
	Introduction string `json:"introduction"`
	Activity     string `json:"activity"`
	Game         string `json:"game"`
	Closure      string `json:"closure"`
}

func PlanSchema() map[string]any {
	props := map[string]any{}
	for _, k := range PlanKeys {
		props[k] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             append([]string(nil), PlanKeys...),
		"additionalProperties": false,
	}
}

// DecodePlan parses raw model output. Code fences around the object are
// tolerated; a missing key is an error.
func DecodePlan(raw []byte) (*Plan, error) {
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("decode plan: empty response")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("decode plan: response is not a JSON object: %w", err)
	}
	return PlanFromMap(obj)
}

// PlanFromMap converts a decoded JSON object. List values are joined one
// item per line; other scalars are formatted as text.
func PlanFromMap(obj map[string]any) (*Plan, error) {
	if obj == nil {
		return nil, fmt.Errorf("decode plan: nil object")
	}
	var missing []string
	vals := make(map[string]string, len(PlanKeys))
	for _, k := range PlanKeys {
		v, ok := obj[k]
		if !ok || v == nil {
			missing = append(missing, k)
			continue
		}
		vals[k] = stringify(v)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("decode plan: missing keys %s", strings.Join(missing, ", "))
	}
	return &Plan{
		ActivityName: vals["activityName"],
		Objectives:   vals["objectives"],
		Materials:    vals["materials"],
		Introduction: vals["introduction"],
		Activity:     vals["activity"],
		Game:         vals["game"],
		Closure:      vals["closure"],
	}, nil
}

// Values flattens the plan into template placeholders.
func (p *Plan) Values() map[string]string {
	if p == nil {
		return map[string]string{}
	}
	return map[string]string{
		"activityName": p.ActivityName,
		"objectives":   p.Objectives,
		"materials":    p.Materials,
		"introduction": p.Introduction,
		"activity":     p.Activity,
		"game":         p.Game,
		"closure":      p.Closure,
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			if s := stringify(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
