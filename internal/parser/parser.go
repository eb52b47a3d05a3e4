// internal/parser/parser.go
package parser

import (
	"strings"
	"time"
	"unicode"

	"github.com/scriptecho/scriptreader/internal/models"
)

// HeadingDetector decides whether a line opens a new scene.
type HeadingDetector func(line string) bool

// Scene-boundary tokens of the conventional screenplay format.
var defaultHeadingPrefixes = []string{
	"INT.",
	"EXT.",
	"INT/EXT.",
	"INT./EXT.",
	"I/E.",
}

// DefaultHeadingDetector matches the conventional INT./EXT. scene headings.
func DefaultHeadingDetector(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, prefix := range defaultHeadingPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// A cue line longer than this is assumed to be shouted action text,
// not a character name.
const maxCueRuneLen = 40

// Parser splits normalized script text into scenes, character cues and
// dialogue blocks.
//
// Cue detection is a heuristic: any non-heading line whose letters are all
// upper-case is taken as a character cue. All-caps action lines therefore
// produce false positives; callers that need exact attribution must
// post-filter against a known character list.
type Parser struct {
	detectHeading HeadingDetector
}

// NewParser creates a parser with the conventional heading detector.
func NewParser() *Parser {
	return &Parser{detectHeading: DefaultHeadingDetector}
}

// NewParserWithDetector creates a parser with a custom heading detector.
func NewParserWithDetector(detector HeadingDetector) *Parser {
	if detector == nil {
		detector = DefaultHeadingDetector
	}
	return &Parser{detectHeading: detector}
}

// Parse builds the structured script model from flat text.
// Scene ids are dense and 1-based; dialogue that appears before the first
// heading is attached to scene id 0.
func (p *Parser) Parse(name, text string) (*models.ScriptDocument, error) {
	lines := splitLines(text)

	doc := &models.ScriptDocument{
		Name:     name,
		RawText:  text,
		ParsedAt: time.Now(),
	}

	currentSceneID := 0

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		switch {
		case line == "":
			i++

		case p.detectHeading(line):
			// Close the previous scene implicitly and open the next one.
			doc.Scenes = append(doc.Scenes, models.Scene{
				ID:      len(doc.Scenes) + 1,
				Heading: line,
			})
			currentSceneID = len(doc.Scenes)
			i++

		case isCueLine(line):
			cue := normalizeCueName(line)
			block, hint, next := p.collectDialogue(lines, i+1)

			doc.Dialogues = append(doc.Dialogues, models.DialogueLine{
				Character: cue,
				Text:      block,
				SceneID:   currentSceneID,
				Emotion:   models.EmotionNeutral,
				Hint:      hint,
			})
			if currentSceneID > 0 {
				addSceneCharacter(&doc.Scenes[currentSceneID-1], cue)
			}
			i = next

		default:
			// Action/description line, not part of the dialogue model.
			i++
		}
	}

	return doc, nil
}

// collectDialogue accumulates the dialogue block starting at index start.
// The block ends at the first blank line, cue line or scene heading.
// A leading parenthetical line becomes the delivery hint instead of text.
// Interior lines are kept verbatim, indentation included; only boundary
// detection looks at the trimmed form. Returns the block text, the hint,
// and the index of the line that ended the block.
func (p *Parser) collectDialogue(lines []string, start int) (text, hint string, next int) {
	var block []string

	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		if trimmed == "" || p.detectHeading(trimmed) || isCueLine(trimmed) {
			break
		}

		if len(block) == 0 && hint == "" && isParenthetical(trimmed) {
			hint = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			i++
			continue
		}

		block = append(block, lines[i])
		i++
	}

	return strings.Join(block, "\n"), hint, i
}

// splitLines splits text into logical lines, tolerating CRLF endings.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// isCueLine reports whether a trimmed, non-heading line looks like a
// character cue: at least one letter, no lower-case letters, and short
// enough to plausibly be a name.
func isCueLine(line string) bool {
	if line == "" {
		return false
	}

	runes := []rune(line)
	if len(runes) > maxCueRuneLen {
		return false
	}

	hasLetter := false
	for _, r := range runes {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}

	return hasLetter
}

// normalizeCueName strips the trailing parenthetical extension
// ("JOHN (V.O.)" -> "JOHN") and collapses inner whitespace.
func normalizeCueName(line string) string {
	if idx := strings.Index(line, "("); idx >= 0 {
		line = line[:idx]
	}
	return strings.Join(strings.Fields(line), " ")
}

// isParenthetical reports whether a whole line is wrapped in parentheses.
func isParenthetical(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")")
}

// addSceneCharacter appends a character name once, preserving order.
func addSceneCharacter(scene *models.Scene, name string) {
	for _, existing := range scene.Characters {
		if existing == name {
			return
		}
	}
	scene.Characters = append(scene.Characters, name)
}
