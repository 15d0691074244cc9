package sections

import (
	"strings"
	"testing"
)

const structuredResume = `Jane Doe
jane.doe@example.com
+1 (555) 123-4567

Summary
Backend engineer with eight years of experience building APIs.

Experience
Acme Corp, Senior Engineer, 2019-2024
Built order processing services in Go.

Education
BSc Computer Science, State University

Skills
Go, PostgreSQL, AWS

Certifications
AWS Solutions Architect Associate
`

func TestSplitStructuredResume(t *testing.T) {
	secs := Split(structuredResume)
	if len(secs) != 6 {
		t.Fatalf("expected 6 sections, got %d: %+v", len(secs), secs)
	}

	wantTypes := []Type{TypeContact, TypeSummary, TypeExperience, TypeEducation, TypeSkills, TypeCertifications}
	for i, want := range wantTypes {
		if secs[i].Type != want {
			t.Errorf("section %d: type = %s, want %s", i, secs[i].Type, want)
		}
		if secs[i].SequenceOrder != i {
			t.Errorf("section %d: sequence_order = %d", i, secs[i].SequenceOrder)
		}
	}

	if secs[0].Confidence != ConfidenceContact {
		t.Errorf("contact confidence = %d, want %d", secs[0].Confidence, ConfidenceContact)
	}
	for _, s := range secs[1:] {
		if s.Confidence != ConfidenceHeading {
			t.Errorf("%s confidence = %d, want %d", s.Type, s.Confidence, ConfidenceHeading)
		}
	}
	if !strings.Contains(secs[2].Content, "Acme Corp") {
		t.Errorf("experience body missing employer: %q", secs[2].Content)
	}
}

func TestSplitPositionsCoverText(t *testing.T) {
	secs := Split(structuredResume)
	runes := []rune(structuredResume)

	if secs[0].StartPosition != 0 {
		t.Errorf("first section starts at %d", secs[0].StartPosition)
	}
	if last := secs[len(secs)-1]; last.EndPosition != len(runes) {
		t.Errorf("last section ends at %d, want %d", last.EndPosition, len(runes))
	}
	for i, s := range secs {
		if got := string(runes[s.StartPosition:s.EndPosition]); got != s.Content {
			t.Errorf("section %d: content does not match its span", i)
		}
		if i > 0 && s.StartPosition != secs[i-1].EndPosition {
			t.Errorf("gap between section %d and %d", i-1, i)
		}
	}
}

func TestSplitNoStructureFallsBack(t *testing.T) {
	text := "just a wall of prose without any recognizable headings in it at all. it keeps going and mentions skills mid-sentence which should not anchor anything."
	secs := Split(text)
	if len(secs) != 1 {
		t.Fatalf("expected single fallback section, got %d", len(secs))
	}
	if secs[0].Type != TypeFullContent {
		t.Errorf("type = %s, want %s", secs[0].Type, TypeFullContent)
	}
	if secs[0].Confidence != ConfidenceFallback {
		t.Errorf("confidence = %d, want %d", secs[0].Confidence, ConfidenceFallback)
	}
	if secs[0].Content != text {
		t.Errorf("fallback content does not cover whole text")
	}
}

func TestSplitEmptyTextStillReturnsSection(t *testing.T) {
	secs := Split("   \n  ")
	if len(secs) != 1 || secs[0].Type != TypeFullContent {
		t.Fatalf("expected single full_content section, got %+v", secs)
	}
}

func TestSplitHeadingVariants(t *testing.T) {
	cases := []struct {
		line string
		want Type
	}{
		{"WORK HISTORY", TypeExperience},
		{"Professional Background:", TypeExperience},
		{"Technical Proficiencies", TypeSkills},
		{"ABOUT ME", TypeSummary},
		{"Licenses", TypeCertifications},
	}
	for _, tc := range cases {
		typ, ok := classifyHeading(tc.line)
		if !ok || typ != tc.want {
			t.Errorf("classifyHeading(%q) = %s,%v want %s", tc.line, typ, ok, tc.want)
		}
	}

	rejected := []string{
		"I gained experience building services.", // sentence
		"my skills include go and postgres and kafka and redis", // too many words
		"",
	}
	for _, line := range rejected {
		if _, ok := classifyHeading(line); ok {
			t.Errorf("classifyHeading(%q) unexpectedly matched", line)
		}
	}
}

func TestSplitPreambleWithoutContactMarkers(t *testing.T) {
	text := "Some leading notes\n\nExperience\nDid things at places.\n"
	secs := Split(text)
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(secs))
	}
	if secs[0].Type != TypeOther || secs[0].Confidence != ConfidenceLoose {
		t.Errorf("preamble = %s/%d, want %s/%d", secs[0].Type, secs[0].Confidence, TypeOther, ConfidenceLoose)
	}
}
