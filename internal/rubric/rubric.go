// Package rubric loads role-specific evaluation rubrics and computes
// coverage of aggregate answer text against them, via a lexical or a
// semantic strategy.
package rubric

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var rubricSchema string

// Item is one evaluation criterion with its lexical signals and optional
// worked examples used as semantic representatives.
type Item struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Examples []string `json:"examples,omitempty"`
}

// Rubric is a named set of evaluation criteria selected by job role.
type Rubric struct {
	Name        string   `json:"name"`
	Items       []Item   `json:"items"`
	Suggestions []string `json:"suggestions"`
}

// Default returns the built-in general rubric used when no role-specific
// definition is available.
func Default() *Rubric {
	return &Rubric{
		Name: "General",
		Items: []Item{
			{ID: "structure", Label: "논리 구조", Keywords: []string{"구조", "정리", "논리"}},
			{ID: "action", Label: "행동 중심", Keywords: []string{"행동", "실행", "어떻게"}},
			{ID: "result", Label: "결과/수치", Keywords: []string{"결과", "성과", "%", "건"}},
			{ID: "collab", Label: "협업/소통", Keywords: []string{"협업", "조율", "보고"}},
			{ID: "insight", Label: "인사이트", Keywords: []string{"원인", "분석", "인사이트"}},
		},
		Suggestions: []string{
			"결론을 먼저 한 문장으로 말해 보세요.",
			"성과 수치와 영향도를 함께 제시해 보세요.",
		},
	}
}

// Load reads `<dir>/<lowercased job role>.json`, validates it against the
// embedded rubric schema, and falls back to the built-in general rubric
// when the file is absent, unparseable, or invalid. Loading never fails.
func Load(dir, jobRole string) *Rubric {
	role := strings.ToLower(strings.TrimSpace(jobRole))
	if role == "" {
		role = "general"
	}

	data, err := os.ReadFile(filepath.Join(dir, role+".json"))
	if err != nil {
		return Default()
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(rubricSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil || !result.Valid() {
		return Default()
	}

	var r Rubric
	if err := json.Unmarshal(data, &r); err != nil || len(r.Items) == 0 {
		return Default()
	}
	return &r
}
