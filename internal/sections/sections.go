package sections

import (
	"regexp"
	"strings"
)

// Type labels a detected resume section.
type Type string

const (
	TypeContact        Type = "contact"
	TypeSummary        Type = "summary"
	TypeExperience     Type = "experience"
	TypeEducation      Type = "education"
	TypeSkills         Type = "skills"
	TypeCertifications Type = "certifications"
	TypeOther          Type = "other"
	TypeFullContent    Type = "full_content"
)

// Confidence levels assigned by the segmenter.
const (
	ConfidenceHeading  = 85 // a recognized heading anchors the section
	ConfidenceContact  = 60 // leading block matched contact patterns
	ConfidenceLoose    = 40 // preamble without contact markers
	ConfidenceFallback = 30 // whole document, no structure detected
)

// Section is one labeled, positioned slice of the extracted text.
// Positions are character offsets into the text passed to Split.
type Section struct {
	Type          Type
	Content       string
	StartPosition int
	EndPosition   int
	SequenceOrder int
	Confidence    int
}

var headingKeywords = []struct {
	typ   Type
	words []string
}{
	{TypeSummary, []string{"summary", "objective", "profile", "about me", "about"}},
	{TypeExperience, []string{"experience", "employment", "work history", "professional background", "career"}},
	{TypeEducation, []string{"education", "academic", "qualifications"}},
	{TypeSkills, []string{"skills", "technologies", "competencies", "technical proficiencies", "tools"}},
	{TypeCertifications, []string{"certifications", "certificates", "licenses", "credentials"}},
	{TypeContact, []string{"contact", "personal details", "personal information"}},
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?\d[\d\s\-().]{7,}\d)`)
)

const maxHeadingLen = 60

// Split segments extracted resume text into labeled sections using heading
// keywords and layout cues. It never returns zero sections: when no
// structure is detected the whole document comes back as one full_content
// section with low confidence.
func Split(text string) []Section {
	if strings.TrimSpace(text) == "" {
		return []Section{{
			Type:          TypeFullContent,
			Content:       text,
			StartPosition: 0,
			EndPosition:   len([]rune(text)),
			SequenceOrder: 0,
			Confidence:    ConfidenceFallback,
		}}
	}

	runes := []rune(text)
	headings := findHeadings(text)
	if len(headings) == 0 {
		return []Section{{
			Type:          TypeFullContent,
			Content:       text,
			StartPosition: 0,
			EndPosition:   len(runes),
			SequenceOrder: 0,
			Confidence:    ConfidenceFallback,
		}}
	}

	var out []Section

	// Anything before the first heading is the contact/preamble block.
	if headings[0].start > 0 {
		lead := string(runes[:headings[0].start])
		if strings.TrimSpace(lead) != "" {
			typ, conf := TypeOther, ConfidenceLoose
			if emailRe.MatchString(lead) || phoneRe.MatchString(lead) {
				typ, conf = TypeContact, ConfidenceContact
			}
			out = append(out, Section{
				Type:          typ,
				Content:       lead,
				StartPosition: 0,
				EndPosition:   headings[0].start,
				Confidence:    conf,
			})
		}
	}

	for i, h := range headings {
		end := len(runes)
		if i+1 < len(headings) {
			end = headings[i+1].start
		}
		body := string(runes[h.start:end])
		if strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, Section{
			Type:          h.typ,
			Content:       body,
			StartPosition: h.start,
			EndPosition:   end,
			Confidence:    ConfidenceHeading,
		})
	}

	if len(out) == 0 {
		out = append(out, Section{
			Type:          TypeFullContent,
			Content:       text,
			StartPosition: 0,
			EndPosition:   len(runes),
			Confidence:    ConfidenceFallback,
		})
	}

	for i := range out {
		out[i].SequenceOrder = i
	}
	return out
}

type heading struct {
	typ   Type
	start int // rune offset of the heading line
}

func findHeadings(text string) []heading {
	var out []heading
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		lineRunes := len([]rune(line))
		if typ, ok := classifyHeading(line); ok {
			out = append(out, heading{typ: typ, start: offset})
		}
		offset += lineRunes
	}
	return out
}

// classifyHeading reports whether a line looks like a section heading:
// short, keyword-bearing, and not sentence-like.
func classifyHeading(line string) (Type, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len([]rune(trimmed)) > maxHeadingLen {
		return "", false
	}
	normalized := strings.ToLower(strings.TrimRight(trimmed, ":"))
	// Sentence-like lines (periods, many words) are body text even when
	// they mention a keyword.
	if strings.Contains(normalized, ".") || len(strings.Fields(normalized)) > 5 {
		return "", false
	}
	for _, hk := range headingKeywords {
		for _, w := range hk.words {
			if normalized == w || strings.HasPrefix(normalized, w+" ") || strings.HasSuffix(normalized, " "+w) {
				return hk.typ, true
			}
		}
	}
	// An all-caps short line is a layout cue even without a known keyword.
	if isAllCapsWords(trimmed) {
		return TypeOther, true
	}
	return "", false
}

func isAllCapsWords(s string) bool {
	letters := 0
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	return letters >= 3
}
