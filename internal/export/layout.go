package export

import "strings"

// BlockKind identifies a laid-out report section.
type BlockKind string

const (
	BlockTitle    BlockKind = "title"
	BlockMeta     BlockKind = "meta"
	BlockOverview BlockKind = "overview"
	BlockChart    BlockKind = "chart"
	BlockAnalysis BlockKind = "analysis"
)

// Layout holds the page geometry used by the pagination accumulator.
// Units are millimetres on an A4 portrait page.
type Layout struct {
	PageWidth   float64
	PageHeight  float64
	Margin      float64
	TitleHeight float64
	MetaHeight  float64
	ChartHeight float64
	LineHeight  float64
	// CharWidth is the average character advance used to wrap text to
	// the available width.
	CharWidth float64
}

// DefaultLayout returns the A4 geometry used for the PDF artifact.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:   210,
		PageHeight:  297,
		Margin:      15,
		TitleHeight: 14,
		MetaHeight:  8,
		ChartHeight: 90,
		LineHeight:  5,
		CharWidth:   2.1,
	}
}

// ContentWidth returns the horizontal space available to a section.
func (l Layout) ContentWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

// ContentHeight returns the vertical space available on one page.
func (l Layout) ContentHeight() float64 {
	return l.PageHeight - 2*l.Margin
}

// MaxChars returns how many characters fit on one wrapped line.
func (l Layout) MaxChars() int {
	n := int(l.ContentWidth() / l.CharWidth)
	if n < 1 {
		n = 1
	}
	return n
}

// Block is one laid-out section fragment with its measured height.
type Block struct {
	Kind   BlockKind
	Lines  []string
	Height float64
}

// Page is one page of laid-out blocks.
type Page struct {
	Blocks []Block
}

// Paginate lays the report sections out top to bottom with a running
// vertical-offset accumulator. Each section advances the offset by its
// measured height; content that would exceed the page starts a new
// page instead of being clipped. Text sections split line by line
// across the break, so long analysis text is never dropped.
func Paginate(doc ReportDocument, l Layout) []Page {
	p := paginator{layout: l}

	p.placeFixed(BlockTitle, []string{doc.Title}, l.TitleHeight)
	p.placeFixed(BlockMeta, []string{"Generated on " + doc.GeneratedAt.Format("2006-01-02 15:04 MST")}, l.MetaHeight)
	p.placeText(BlockOverview, wrapText(doc.Overview, l.MaxChars()))
	p.placeFixed(BlockChart, nil, l.ChartHeight)
	p.placeText(BlockAnalysis, wrapText(doc.Analysis, l.MaxChars()))

	return p.pages
}

type paginator struct {
	layout Layout
	pages  []Page
	offset float64
}

// placeFixed places an indivisible section, breaking to a fresh page
// when it does not fit in the remaining space.
func (p *paginator) placeFixed(kind BlockKind, lines []string, height float64) {
	if len(p.pages) == 0 || p.offset+height > p.layout.ContentHeight() {
		p.newPage()
	}
	p.appendBlock(Block{Kind: kind, Lines: lines, Height: height})
}

// placeText places a wrapped text section, filling the remaining space
// line by line and continuing the same section on the next page.
func (p *paginator) placeText(kind BlockKind, lines []string) {
	if len(p.pages) == 0 {
		p.newPage()
	}
	for len(lines) > 0 {
		remaining := p.layout.ContentHeight() - p.offset
		fit := int(remaining / p.layout.LineHeight)
		if fit <= 0 {
			p.newPage()
			continue
		}
		if fit > len(lines) {
			fit = len(lines)
		}
		p.appendBlock(Block{
			Kind:   kind,
			Lines:  lines[:fit],
			Height: float64(fit) * p.layout.LineHeight,
		})
		lines = lines[fit:]
	}
}

func (p *paginator) appendBlock(b Block) {
	page := &p.pages[len(p.pages)-1]
	page.Blocks = append(page.Blocks, b)
	p.offset += b.Height
}

func (p *paginator) newPage() {
	p.pages = append(p.pages, Page{})
	p.offset = 0
}

// wrapText greedily wraps text to maxChars per line, preserving
// paragraph breaks. Words longer than a line are hard-split.
func wrapText(text string, maxChars int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			for len(word) > maxChars {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				lines = append(lines, word[:maxChars])
				word = word[maxChars:]
			}
			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= maxChars:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	// Trim trailing blank lines left by paragraph breaks.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
