package agents

import (
	_ "embed"
	"fmt"
	"strings"
)

const systemPrompt = "You are a resume review engine. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."

var (
	//go:embed prompts/structure.txt
	structureTemplate string
	//go:embed prompts/appeal.txt
	appealTemplate string
)

func renderPrompt(template string, in Input) string {
	out := template
	out = strings.ReplaceAll(out, "{{TARGET_ROLE}}", fallback(in.TargetRole, "unspecified"))
	out = strings.ReplaceAll(out, "{{TARGET_INDUSTRY}}", fallback(in.TargetIndustry, "unspecified"))
	out = strings.ReplaceAll(out, "{{EXPERIENCE_LEVEL}}", fallback(in.ExperienceLevel, "unspecified"))
	out = strings.ReplaceAll(out, "{{SECTIONS}}", renderSections(in))
	return out
}

func renderSections(in Input) string {
	if len(in.Sections) == 0 {
		return "[0] full_content:\n" + in.ResumeText
	}
	var b strings.Builder
	for i, s := range in.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] %s:\n%s\n", i, s.Type, strings.TrimSpace(s.Content))
	}
	return b.String()
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// CleanJSON strips a markdown code fence from model output, if present.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
