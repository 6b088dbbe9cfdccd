package hocr

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ironsheep/tesseract-words/internal/words"
)

// WordClass is the class token Tesseract puts on word-level elements.
const WordClass = "ocrx_word"

// Elements that never have an end tag in HTML.
var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// ParseString parses an hOCR document held in memory.
func ParseString(markup string) (words.Table, error) {
	return Parse(strings.NewReader(markup))
}

// ParseFile reads and parses a saved .hocr file.
func ParseFile(path string) (words.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hOCR file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an hOCR document and returns one Record per word element, in
// document order.
//
// A word element is any element whose class list contains "ocrx_word". Its
// title must carry "bbox x1 y1 x2 y2" and "x_wconf N"; the record keeps the
// top-left corner, the width and height derived from the corners, the
// element's text verbatim and the confidence.
//
// Elements other than word elements are ignored, including the engine's
// line and paragraph containers. A document without word elements yields an
// empty table.
//
// # Errors
//
// Any failure aborts the whole call with a *ParseError and a nil table;
// there is no partial result. The Kind field tells the cases apart:
//   - KindRead, KindEmpty: the input could not be read or holds no markup
//   - KindSyntax: a stray end tag or a tokenizer failure
//   - KindTruncated: the input stops inside a tag or with elements open
//   - KindTitle, KindBBox, KindConfidence, KindGeometry: a malformed word,
//     identified by ParseError.Word
func Parse(r io.Reader) (words.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(KindRead, -1, "", "failed to read markup", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newError(KindEmpty, -1, "", "markup is empty", nil)
	}

	var (
		z     = html.NewTokenizer(bytes.NewReader(data))
		table = words.Table{}
		open  []string
		cur   *pendingWord
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return nil, newError(KindSyntax, -1, "", "tokenizer failed", z.Err())
			}
			// A tag cut off by the end of input is left unconsumed in Raw.
			if len(z.Raw()) > 0 {
				return nil, newError(KindTruncated, -1, "", "input ends inside a tag", nil)
			}
			if len(open) > 0 {
				return nil, newError(KindTruncated, -1, "",
					fmt.Sprintf("unclosed <%s> at end of input", open[len(open)-1]), nil)
			}
			return table, nil

		case html.StartTagToken:
			tok := z.Token()
			if voidElements[tok.DataAtom] {
				continue
			}
			open = append(open, tok.Data)
			if cur == nil && hasClass(tok, WordClass) {
				cur = &pendingWord{index: len(table), depth: len(open)}
				cur.title, cur.hasTitle = attr(tok, "title")
			}

		case html.SelfClosingTagToken:
			tok := z.Token()
			if cur == nil && hasClass(tok, WordClass) {
				title, ok := attr(tok, "title")
				w := &pendingWord{index: len(table), title: title, hasTitle: ok}
				rec, err := w.record()
				if err != nil {
					return nil, err
				}
				table = append(table, rec)
			}

		case html.EndTagToken:
			tok := z.Token()
			i := lastIndex(open, tok.Data)
			if i < 0 {
				if voidElements[tok.DataAtom] {
					continue
				}
				return nil, newError(KindSyntax, -1, "",
					fmt.Sprintf("unexpected </%s>", tok.Data), nil)
			}
			// Closing an ancestor implicitly closes everything inside it.
			open = open[:i]
			if cur != nil && len(open) < cur.depth {
				rec, err := cur.record()
				if err != nil {
					return nil, err
				}
				table = append(table, rec)
				cur = nil
			}

		case html.TextToken:
			if cur != nil {
				cur.text.Write(z.Text())
			}
		}
	}
}

type pendingWord struct {
	index    int
	depth    int
	title    string
	hasTitle bool
	text     bytes.Buffer
}

func (w *pendingWord) record() (words.Record, error) {
	if !w.hasTitle {
		return words.Record{}, newError(KindTitle, w.index, "", "word has no title attribute", nil)
	}
	box, conf, err := parseTitle(w.title, w.index)
	if err != nil {
		return words.Record{}, err
	}
	rec := words.FromCorners(box[0], box[1], box[2], box[3], w.text.String(), conf)
	if rec.W < 0 || rec.H < 0 {
		return words.Record{}, newError(KindGeometry, w.index, w.title, "bbox has negative extent", nil)
	}
	return rec, nil
}

// parseTitle reads the bbox and x_wconf properties from a title such as
// "bbox 36 92 96 116; x_wconf 90". Other properties are ignored.
func parseTitle(title string, index int) ([4]int, int, error) {
	var (
		box      [4]int
		conf     int
		haveBox  bool
		haveConf bool
	)

	for _, field := range strings.Split(title, ";") {
		toks := strings.Fields(field)
		if len(toks) == 0 {
			continue
		}
		switch toks[0] {
		case "bbox":
			if len(toks) != 5 {
				return box, 0, newError(KindBBox, index, title,
					fmt.Sprintf("bbox has %d coordinates, want 4", len(toks)-1), nil)
			}
			for i, t := range toks[1:] {
				v, err := strconv.Atoi(t)
				if err != nil {
					return box, 0, newError(KindBBox, index, title, "non-numeric bbox coordinate", err)
				}
				box[i] = v
			}
			haveBox = true
		case "x_wconf":
			if len(toks) != 2 {
				return box, 0, newError(KindConfidence, index, title, "x_wconf needs exactly one value", nil)
			}
			v, err := strconv.Atoi(toks[len(toks)-1])
			if err != nil {
				return box, 0, newError(KindConfidence, index, title, "non-numeric confidence", err)
			}
			conf = v
			haveConf = true
		}
	}

	if !haveBox {
		return box, 0, newError(KindBBox, index, title, "missing bbox", nil)
	}
	if !haveConf {
		return box, 0, newError(KindConfidence, index, title, "missing x_wconf", nil)
	}
	return box, conf, nil
}

func hasClass(tok html.Token, class string) bool {
	v, ok := attr(tok, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(tok html.Token, name string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func lastIndex(stack []string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
	}
	return -1
}
