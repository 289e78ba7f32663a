package pipeline

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Extractor turns a raw notification email (HTML body, subject, plaintext,
// snippet) into a canonical Transaction. It never fails on malformed content;
// every parse problem degrades to heuristic defaults.
type Extractor struct {
	labels LabelMap
	log    zerolog.Logger
	now    func() time.Time
}

// NewExtractor creates an extractor with the given label table.
func NewExtractor(labels LabelMap, log zerolog.Logger) *Extractor {
	return &Extractor{labels: labels, log: log, now: time.Now}
}

var (
	partnerRe   = regexp.MustCompile(`(?i:dari|ke|oleh|kepada)\s+([A-Z][A-Z\s']*)`)
	bankBrandRe = regexp.MustCompile(`(?i)(BCA|BNI|BRI|Mandiri|SeaBank|DANA|OVO|GOPAY|ShopeePay)`)
	amountRe    = regexp.MustCompile(`(?i)Rp\s*(\d{1,3}(?:[.,]\d{3})*)`)

	// Ordered: labeled reference prefixes first, bare long-digit run last.
	referencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:no\.|nomor)\s*referensi\s*[:#]?\s*(\d{14,})`),
		regexp.MustCompile(`(?i)(?:reference|ref)\s*(?:number|no|#)\s*[:#]?\s*(\d{14,})`),
		regexp.MustCompile(`(?i)(?:id transaksi|transaction id)\s*[:#]?\s*(\d{14,})`),
		regexp.MustCompile(`(\d{14,})`),
	}
)

// ParseTransaction extracts a Transaction from one decoded email. Structural
// strategies run in order: table rows, then colon-separated pairs, then regex
// fallbacks for the partner. Malformed or empty HTML falls back to a
// transaction synthesized from subject/body/snippet alone.
func (e *Extractor) ParseTransaction(htmlBody, subject, body, snippet string) *Transaction {
	if strings.TrimSpace(htmlBody) == "" {
		return e.defaultTransaction(subject, body, snippet)
	}

	doc, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		e.log.Warn().Err(err).Msg("html parse failed, using content heuristics")
		return e.defaultTransaction(subject, body, snippet)
	}

	raw := RawFields{}
	found := e.scanTableRows(doc, raw)
	if !found || raw[FieldPartner] == "" {
		e.scanColonPairs(doc, raw)
	}

	if raw[FieldPartner] == "" {
		if m := partnerRe.FindStringSubmatch(snippet + " " + body); m != nil {
			raw[FieldPartner] = strings.TrimSpace(m[1])
		}
	}
	if raw[FieldPartner] == "" {
		if raw[FieldRekening] != "" {
			raw[FieldPartner] = raw[FieldRekening]
		} else {
			raw[FieldPartner] = extractBankInfo(subject + " " + snippet)
		}
	}

	if raw[FieldReferenceNumber] == "" {
		raw[FieldReferenceNumber] = extractReferenceNumber(htmlBody + " " + body + " " + snippet)
	}

	return e.buildTransaction(raw, subject, body, snippet)
}

// scanTableRows applies the tabular strategy: for every table row with two or
// more cells, the first cell is the label and the second the value. Reports
// whether any row produced data.
func (e *Extractor) scanTableRows(doc *html.Node, raw RawFields) bool {
	found := false
	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}
		cells := rowCells(n)
		if len(cells) < 2 {
			return
		}
		label, value := cells[0], cells[1]
		if label == "" || value == "" {
			return
		}
		raw[e.labels.Map(label)] = strings.TrimSpace(value)
		found = true
	})
	return found
}

// scanColonPairs applies the colon strategy: any element whose flattened text
// contains a colon is split on the first colon. Unlike the tabular pass this
// one only accepts known labels, so arbitrary prose is not misread as data.
func (e *Extractor) scanColonPairs(doc *html.Node, raw RawFields) {
	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		content := flattenText(n)
		idx := strings.Index(content, ":")
		if idx < 0 {
			return
		}
		label := strings.TrimSpace(content[:idx])
		value := strings.TrimSpace(content[idx+1:])
		if label == "" || value == "" || !e.labels.Known(label) {
			return
		}
		raw[e.labels.Map(label)] = value
	})
}

// defaultTransaction synthesizes a best-effort transaction from the textual
// parts alone, used whenever the HTML body is absent or unparseable.
func (e *Extractor) defaultTransaction(subject, body, snippet string) *Transaction {
	raw := RawFields{}
	if m := amountRe.FindStringSubmatch(subject + " " + snippet); m != nil {
		raw[FieldNominal] = m[0]
	}
	raw[FieldPartner] = extractBankInfo(subject + " " + snippet)
	raw[FieldReferenceNumber] = extractReferenceNumber(body + " " + snippet)
	return e.buildTransaction(raw, subject, body, snippet)
}

// extractBankInfo finds a known bank or e-wallet brand name in the text.
func extractBankInfo(text string) string {
	if m := bankBrandRe.FindString(text); m != "" {
		return m
	}
	return ""
}

func extractReferenceNumber(text string) string {
	for _, re := range referencePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// walkNodes visits every node in the tree in document order.
func walkNodes(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

// flattenText returns the node's text content with whitespace collapsed.
func flattenText(n *html.Node) string {
	var b strings.Builder
	walkNodes(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// rowCells collects the flattened text of every td/th cell under a row.
func rowCells(tr *html.Node) []string {
	var cells []string
	walkNodes(tr, func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			cells = append(cells, flattenText(n))
		}
	})
	return cells
}
