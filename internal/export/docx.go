package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13

	// transcriptParagraphSentences groups transcript sentences into paragraphs.
	transcriptParagraphSentences = 5
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*•]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\d+[\.\)]\s+(.+)$`)
)

type blockKind int

const (
	blockTitle blockKind = iota
	blockHeading
	blockText
)

type block struct {
	kind blockKind
	text string
	size uint64
}

// layout turns doc into a flat list of paragraphs.
func layout(doc Document) []block {
	title := doc.Title
	if title == "" {
		title = "Summary"
	}
	blocks := []block{{kind: blockTitle, text: title, size: 16}}

	if s := strings.TrimSpace(doc.Summary); s != "" {
		blocks = append(blocks, block{kind: blockHeading, text: "Summary", size: 15})
		blocks = append(blocks, markdownBlocks(s)...)
	}

	if t := strings.TrimSpace(doc.Transcript); t != "" {
		blocks = append(blocks, block{kind: blockHeading, text: "Transcript", size: 15})
		for _, p := range transcriptParagraphs(t, transcriptParagraphSentences) {
			blocks = append(blocks, block{kind: blockText, text: p, size: fontSize})
		}
	}
	return blocks
}

// markdownBlocks handles the light markdown completion models tend to emit:
// headings, bullets, numbered lists and bold runs.
func markdownBlocks(md string) []block {
	var out []block
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			out = append(out, block{kind: blockHeading, text: m[2], size: headingSize(len(m[1]))})
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			out = append(out, block{kind: blockText, text: "• " + m[1], size: fontSize})
			continue
		}
		if reNumbered.MatchString(trimmed) {
			out = append(out, block{kind: blockText, text: trimmed, size: fontSize})
			continue
		}
		out = append(out, block{kind: blockText, text: trimmed, size: fontSize})
	}
	return out
}

// transcriptParagraphs splits text on "." and regroups every n sentences.
func transcriptParagraphs(text string, n int) []string {
	var (
		paras []string
		cur   []string
	)
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		cur = append(cur, s+".")
		if len(cur) == n {
			paras = append(paras, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, " "))
	}
	return paras
}

// WriteDocx implements Exporter.
func (e *implExporter) WriteDocx(doc Document, path string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	for _, b := range layout(doc) {
		p := d.AddParagraph("")
		switch b.kind {
		case blockTitle, blockHeading:
			addStyledRun(p, b.text, true, b.size)
		default:
			addRichText(p, b.text)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create docx dir: %w", err)
	}
	if err := d.SaveTo(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
