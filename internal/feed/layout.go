package feed

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spacesedan/paperboy/internal/models"
)

// Variant is the presentation layout of a feed row.
type Variant int

const (
	VariantLarge Variant = iota
	VariantLeftSmall
	VariantRightSmall
)

const (
	LargeRowHeight = 400
	SmallRowHeight = 115
	HeaderHeight   = 25
	FooterHeight   = 3

	// PlaceholderRows is how many skeleton rows an empty feed shows.
	PlaceholderRows = 10
)

func (v Variant) String() string {
	switch v {
	case VariantLarge:
		return "large"
	case VariantLeftSmall:
		return "left-small"
	case VariantRightSmall:
		return "right-small"
	default:
		return "unknown"
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// VariantFor picks the layout for row i. Every fourth row, starting at 0, is
// large; the rest alternate right/left. Content never affects the choice.
func VariantFor(i int) Variant {
	switch {
	case i == 0 || i%4 == 0:
		return VariantLarge
	case i%2 == 0:
		return VariantLeftSmall
	default:
		return VariantRightSmall
	}
}

func HeightFor(i int) int {
	if VariantFor(i) == VariantLarge {
		return LargeRowHeight
	}
	return SmallRowHeight
}

type Row struct {
	Index       int             `json:"index"`
	Variant     Variant         `json:"variant"`
	Height      int             `json:"height"`
	Placeholder bool            `json:"placeholder,omitempty"`
	Article     *models.Article `json:"article,omitempty"`
}

// Layout produces the rows for a feed. An empty feed yields PlaceholderRows
// skeleton rows so the list keeps its shape while loading.
func Layout(articles []models.Article) []Row {
	if len(articles) == 0 {
		rows := make([]Row, PlaceholderRows)
		for i := range rows {
			rows[i] = Row{Index: i, Variant: VariantFor(i), Height: HeightFor(i), Placeholder: true}
		}
		return rows
	}

	rows := make([]Row, len(articles))
	for i := range articles {
		rows[i] = Row{
			Index:   i,
			Variant: VariantFor(i),
			Height:  HeightFor(i),
			Article: &articles[i],
		}
	}
	return rows
}

// HeaderText is the "last updated" banner above the list.
func HeaderText(updatedAt, now time.Time) string {
	if updatedAt.IsZero() {
		return "Not updated yet"
	}
	return "Updated " + humanize.RelTime(updatedAt, now, "ago", "from now")
}
