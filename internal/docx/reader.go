// Package docx reads and annotates Word documents. A document is parsed into
// ordered content blocks (body-level paragraphs and tables) for diffing, and
// annotated copies are produced by rewriting the main document part in place.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// documentPart is the main document part inside the docx package.
const documentPart = "word/document.xml"

// Parse converts the raw bytes of a .docx file into ordered content blocks.
// Empty paragraphs are skipped; tables are serialized to a line-oriented text
// form so they diff as ordinary text.
func Parse(fileBytes []byte) ([]types.ContentBlock, error) {
	docXML, err := readDocumentPart(fileBytes)
	if err != nil {
		return nil, err
	}
	return parseDocumentXML(docXML)
}

// readDocumentPart extracts word/document.xml from the docx zip container.
func readDocumentPart(fileBytes []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("not a valid docx file: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", documentPart, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", documentPart, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("not a valid docx file: missing %s", documentPart)
}

// parseDocumentXML walks the body of the main document part and emits one
// content block per non-empty paragraph and per table, in document order.
func parseDocumentXML(docXML []byte) ([]types.ContentBlock, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var blocks []types.ContentBlock
	index := 0
	inBody := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document XML: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case el.Name.Local == "body":
				inBody = true
			case inBody && el.Name.Local == "p":
				text, err := parseParagraph(decoder)
				if err != nil {
					return nil, err
				}
				if text != "" {
					blocks = append(blocks, types.ContentBlock{
						Index:     index,
						BlockType: types.BlockParagraph,
						Content:   text,
					})
					index++
				}
			case inBody && el.Name.Local == "tbl":
				text, err := parseTable(decoder)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, types.ContentBlock{
					Index:     index,
					BlockType: types.BlockTable,
					Content:   text,
				})
				index++
			case inBody:
				// Other body-level elements (sectPr etc.) carry no content
				if err := decoder.Skip(); err != nil {
					return nil, fmt.Errorf("malformed document XML: %w", err)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "body" {
				inBody = false
			}
		}
	}

	return blocks, nil
}

// parseParagraph consumes a w:p element and returns its trimmed run text.
func parseParagraph(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	inText := false

	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("malformed paragraph: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			depth--
			inText = false
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// parseTable consumes a w:tbl element and serializes it to comparable text:
//
//	[TABLE]
//	Header1 | Header2
//	---
//	Val1 | Val2
//	[/TABLE]
func parseTable(decoder *xml.Decoder) (string, error) {
	var rows []string
	rowCount := 0
	depth := 1

	var cells []string
	var cellParas []string
	var para strings.Builder
	inRow, inCell, inPara, inText := false, false, false, false

	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("malformed table: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch el.Name.Local {
			case "tr":
				inRow = true
				cells = nil
			case "tc":
				if inRow {
					inCell = true
					cellParas = nil
				}
			case "p":
				if inCell {
					inPara = true
					para.Reset()
				}
			case "t":
				inText = inPara
			}
		case xml.EndElement:
			depth--
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					cellParas = append(cellParas, para.String())
					inPara = false
				}
			case "tc":
				if inCell {
					cells = append(cells, strings.TrimSpace(strings.Join(cellParas, "\n")))
					inCell = false
				}
			case "tr":
				if inRow {
					rows = append(rows, strings.Join(cells, " | "))
					if rowCount == 0 {
						// Separator after the header row
						rows = append(rows, "---")
					}
					rowCount++
					inRow = false
				}
			}
		case xml.CharData:
			if inText {
				para.Write(el)
			}
		}
	}

	return "[TABLE]\n" + strings.Join(rows, "\n") + "\n[/TABLE]", nil
}
