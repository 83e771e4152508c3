package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// impactColors maps impact levels to highlight fill colors (RRGGBB).
var impactColors = map[types.ImpactLevel]string{
	types.ImpactCritical: "FF6666",
	types.ImpactMedium:   "FFFF66",
	types.ImpactLow:      "C8C8C8",
}

// fallbackColor is used for any impact level without a mapping.
const fallbackColor = "FFFF00"

var impactLabels = map[types.ImpactLevel]string{
	types.ImpactCritical: "NGHIÊM TRỌNG",
	types.ImpactMedium:   "TRUNG BÌNH",
	types.ImpactLow:      "THẤP",
}

// Annotate produces a copy of the modified document with each classified
// change's block highlighted by impact color and a short inline marker
// appended. Changes whose location cannot be mapped to a block are skipped.
func Annotate(modifiedBytes []byte, changes []types.ClassifiedChange) ([]byte, error) {
	docXML, err := readDocumentPart(modifiedBytes)
	if err != nil {
		return nil, err
	}

	spans, err := scanBlocks(docXML)
	if err != nil {
		return nil, err
	}

	// Collect per-block transforms, then splice back to front so earlier
	// offsets stay valid.
	edited := make(map[int][]byte, len(changes))
	for i := range changes {
		change := &changes[i]
		idx := extractBlockIndex(change.Location)
		if idx < 0 || idx >= len(spans) {
			continue
		}
		span := spans[idx]
		content, ok := edited[idx]
		if !ok {
			content = docXML[span.start:span.end]
		}
		if span.kind == types.BlockTable {
			content = annotateTable(content, change)
		} else {
			content = annotateParagraph(content, change)
		}
		edited[idx] = content
	}

	for idx := len(spans) - 1; idx >= 0; idx-- {
		content, ok := edited[idx]
		if !ok {
			continue
		}
		span := spans[idx]
		docXML = append(docXML[:span.start], append(content, docXML[span.end:]...)...)
	}

	return replaceDocumentPart(modifiedBytes, docXML)
}

// blockLocationRe extracts the 1-based index from a "Block N" location.
var blockLocationRe = regexp.MustCompile(`Block (\d+)`)

// extractBlockIndex returns the 0-based block index for a location string,
// or -1 when the location does not reference a block.
func extractBlockIndex(location string) int {
	m := blockLocationRe.FindStringSubmatch(location)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n - 1
}

// blockSpan is the byte range of one counted body-level block in document.xml.
type blockSpan struct {
	start int
	end   int
	kind  types.BlockType
}

// wtRe matches a text run's content within a block span.
var wtRe = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)

// scanBlocks locates the byte ranges of body-level paragraphs and tables,
// counted with the same indexing the reader uses: empty paragraphs are not
// counted, tables always are.
func scanBlocks(docXML []byte) ([]blockSpan, error) {
	var spans []blockSpan
	var stack []string

	type pending struct {
		name  string
		start int
		depth int
	}
	var open *pending

	i := 0
	for i < len(docXML) {
		lt := bytes.IndexByte(docXML[i:], '<')
		if lt < 0 {
			break
		}
		tagStart := i + lt
		gt := bytes.IndexByte(docXML[tagStart:], '>')
		if gt < 0 {
			return nil, fmt.Errorf("malformed document XML: unterminated tag")
		}
		tagEnd := tagStart + gt + 1
		tag := docXML[tagStart:tagEnd]
		i = tagEnd

		// Skip declarations, comments, and processing instructions
		if len(tag) > 1 && (tag[1] == '?' || tag[1] == '!') {
			continue
		}

		if tag[1] == '/' {
			name := strings.TrimSpace(string(tag[2 : len(tag)-1]))
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if open != nil && name == open.name && len(stack) == open.depth {
				appendBlockSpan(&spans, docXML, open.name, open.start, tagEnd)
				open = nil
			}
			continue
		}

		name := tagName(tag)
		selfClosing := tag[len(tag)-2] == '/'

		parent := ""
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}
		if parent == "w:body" && (name == "w:p" || name == "w:tbl") && open == nil {
			if selfClosing {
				// An empty self-closing paragraph is never counted
				if name == "w:tbl" {
					appendBlockSpan(&spans, docXML, name, tagStart, tagEnd)
				}
			} else {
				open = &pending{name: name, start: tagStart, depth: len(stack)}
			}
		}

		if !selfClosing {
			stack = append(stack, name)
		}
	}

	return spans, nil
}

// appendBlockSpan records a block span, skipping paragraphs with no text.
func appendBlockSpan(spans *[]blockSpan, docXML []byte, name string, start, end int) {
	if name == "w:p" {
		if strings.TrimSpace(textContent(docXML[start:end])) == "" {
			return
		}
		*spans = append(*spans, blockSpan{start: start, end: end, kind: types.BlockParagraph})
		return
	}
	*spans = append(*spans, blockSpan{start: start, end: end, kind: types.BlockTable})
}

// tagName extracts the element name from an opening tag.
func tagName(tag []byte) string {
	body := tag[1 : len(tag)-1]
	for j, c := range body {
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '/' {
			return string(body[:j])
		}
	}
	return string(body)
}

// textContent concatenates the unescaped w:t contents of a span.
func textContent(span []byte) string {
	var sb strings.Builder
	for _, m := range wtRe.FindAllSubmatch(span, -1) {
		sb.WriteString(unescapeXML(string(m[1])))
	}
	return sb.String()
}

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	return xmlUnescaper.Replace(s)
}

// runStartRe matches a run opening tag, optionally followed by its rPr
// opening tag. The alternation order matters: the rPr-bearing form must be
// tried first.
var runStartRe = regexp.MustCompile(`<w:r(?:\s[^>]*)?><w:rPr(?:\s[^>]*)?>|<w:r(?:\s[^>]*)?>`)

// cellStartRe matches a cell opening tag, optionally followed by its tcPr
// opening tag.
var cellStartRe = regexp.MustCompile(`<w:tc(?:\s[^>]*)?><w:tcPr(?:\s[^>]*)?>|<w:tc(?:\s[^>]*)?>`)

// shdElement renders a shading element with the given fill color.
func shdElement(color string) string {
	return fmt.Sprintf(`<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, color)
}

// shadeRuns applies background shading to every run in the span.
func shadeRuns(span []byte, color string) []byte {
	shd := shdElement(color)
	return runStartRe.ReplaceAllFunc(span, func(m []byte) []byte {
		if bytes.Contains(m, []byte("<w:rPr")) {
			return append(append([]byte(nil), m...), shd...)
		}
		return append(append([]byte(nil), m...), "<w:rPr>"+shd+"</w:rPr>"...)
	})
}

// shadeCell applies background shading to a cell via its tcPr.
func shadeCell(span []byte, color string) []byte {
	shd := shdElement(color)
	replaced := false
	return cellStartRe.ReplaceAllFunc(span, func(m []byte) []byte {
		if replaced {
			return m
		}
		replaced = true
		if bytes.Contains(m, []byte("<w:tcPr")) {
			return append(append([]byte(nil), m...), shd...)
		}
		return append(append([]byte(nil), m...), "<w:tcPr>"+shd+"</w:tcPr>"...)
	})
}

// impactColor resolves the highlight color for a change.
func impactColor(impact types.ImpactLevel) string {
	if color, ok := impactColors[impact]; ok {
		return color
	}
	return fallbackColor
}

// annotateParagraph shades all runs of a paragraph and appends the inline
// marker run before the closing tag.
func annotateParagraph(span []byte, change *types.ClassifiedChange) []byte {
	out := shadeRuns(span, impactColor(change.Impact))

	closeIdx := bytes.LastIndex(out, []byte("</w:p>"))
	if closeIdx < 0 {
		return out
	}
	marker := markerRun(change)
	return append(out[:closeIdx], append(marker, out[closeIdx:]...)...)
}

// annotateTable shades the cells whose text matches a changed value, or every
// cell when no match is found, and appends the marker to the first cell.
func annotateTable(span []byte, change *types.ClassifiedChange) []byte {
	color := impactColor(change.Impact)
	cells := cellSpans(span)
	if len(cells) == 0 {
		return span
	}

	values := changedValues(change)
	matched := make([]bool, len(cells))
	anyMatched := false
	for i, c := range cells {
		cellText := strings.TrimSpace(textContent(span[c[0]:c[1]]))
		for _, val := range values {
			if cellText == "" || val == "" {
				continue
			}
			if strings.Contains(cellText, val) || strings.Contains(val, cellText) {
				matched[i] = true
				anyMatched = true
				break
			}
		}
	}

	// Rebuild the table span, shading the selected cells
	var out bytes.Buffer
	prev := 0
	for i, c := range cells {
		out.Write(span[prev:c[0]])
		cell := span[c[0]:c[1]]
		if matched[i] || !anyMatched {
			cell = shadeCell(cell, color)
		}
		if i == 0 {
			// Marker goes into the first cell's last paragraph
			if closeIdx := bytes.LastIndex(cell, []byte("</w:p>")); closeIdx >= 0 {
				marker := markerRun(change)
				cell = append(cell[:closeIdx:closeIdx], append(marker, cell[closeIdx:]...)...)
			}
		}
		out.Write(cell)
		prev = c[1]
	}
	out.Write(span[prev:])
	return out.Bytes()
}

// cellSpans returns the byte ranges of the top-level w:tc elements in a table span.
func cellSpans(span []byte) [][2]int {
	var cells [][2]int
	depth := 0
	start := -1

	i := 0
	for i < len(span) {
		lt := bytes.IndexByte(span[i:], '<')
		if lt < 0 {
			break
		}
		tagStart := i + lt
		gt := bytes.IndexByte(span[tagStart:], '>')
		if gt < 0 {
			break
		}
		tagEnd := tagStart + gt + 1
		tag := span[tagStart:tagEnd]
		i = tagEnd

		if bytes.HasPrefix(tag, []byte("</w:tc>")) {
			depth--
			if depth == 0 && start >= 0 {
				cells = append(cells, [2]int{start, tagEnd})
				start = -1
			}
		} else if bytes.HasPrefix(tag, []byte("<w:tc ")) || bytes.HasPrefix(tag, []byte("<w:tc>")) {
			if depth == 0 {
				start = tagStart
			}
			depth++
		}
	}

	return cells
}

// changedValues collects the old/new texts of a change's word-level edits.
func changedValues(change *types.ClassifiedChange) []string {
	var values []string
	for _, wc := range change.WordChanges {
		if v := strings.TrimSpace(wc.OldText); v != "" {
			values = append(values, v)
		}
		if v := strings.TrimSpace(wc.NewText); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// markerRun renders the gray italic inline marker with the severity label and
// truncated original/modified text.
func markerRun(change *types.ClassifiedChange) []byte {
	label, ok := impactLabels[change.Impact]
	if !ok {
		label = strings.ToUpper(string(change.Impact))
	}

	original := change.Original
	if original == "" {
		original = "(không có)"
	}
	modified := change.Modified
	if modified == "" {
		modified = "(không có)"
	}

	text := fmt.Sprintf(" [%s] Gốc: %s | Mới: %s", label,
		truncateMarker(original), truncateMarker(modified))

	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	var run bytes.Buffer
	run.WriteString(`<w:r><w:rPr><w:i/><w:color w:val="808080"/><w:sz w:val="16"/></w:rPr>`)
	run.WriteString(`<w:t xml:space="preserve">`)
	run.Write(escaped.Bytes())
	run.WriteString(`</w:t></w:r>`)
	return run.Bytes()
}

// truncateMarker shortens marker text to a readable excerpt.
func truncateMarker(s string) string {
	const max = 100
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// replaceDocumentPart rewrites the docx zip with a new main document part.
func replaceDocumentPart(fileBytes, docXML []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("not a valid docx file: %w", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		if f.Name == documentPart {
			if _, err := w.Write(docXML); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
		rc.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize annotated docx: %w", err)
	}

	return out.Bytes(), nil
}
