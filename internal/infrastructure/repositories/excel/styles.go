package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	headerFontSize = 16
	bodyFontSize   = 14
)

// styleKey identifies one body-cell style combination. Styles are interned
// per workbook since excelize registers them globally.
type styleKey struct {
	fill       string
	horizontal string
	date       bool
}

// styleSet lazily creates and caches the workbook's cell styles.
type styleSet struct {
	file     *excelize.File
	headerID int
	body     map[styleKey]int
	links    map[styleKey]int
}

func newStyleSet(file *excelize.File) (*styleSet, error) {
	return &styleSet{
		file:     file,
		headerID: -1,
		body:     make(map[styleKey]int),
		links:    make(map[styleKey]int),
	}, nil
}

// header returns the dark-banner header style.
func (s *styleSet) header() (int, error) {
	if s.headerID >= 0 {
		return s.headerID, nil
	}

	id, err := s.file.NewStyle(&excelize.Style{
		Fill: solidFill(headerColor),
		Font: &excelize.Font{Color: "FFFFFF", Bold: true, Size: headerFontSize},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	s.headerID = id
	return id, nil
}

// linkStyle returns the hyperlink style for one body-cell combination: the
// link font on top of the cell's fill and alignment, so the approval block
// coloring survives the hyperlink.
func (s *styleSet) linkStyle(key styleKey) (int, error) {
	if id, ok := s.links[key]; ok {
		return id, nil
	}

	id, err := s.file.NewStyle(&excelize.Style{
		Fill: solidFill(key.fill),
		Font: &excelize.Font{Color: linkColor, Underline: "single", Size: bodyFontSize},
		Alignment: &excelize.Alignment{
			Horizontal: key.horizontal,
			Vertical:   "center",
			WrapText:   key.horizontal == "center",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create link style: %w", err)
	}
	s.links[key] = id
	return id, nil
}

// bodyStyle returns (creating on first use) the style for one body-cell
// combination.
func (s *styleSet) bodyStyle(key styleKey) (int, error) {
	if id, ok := s.body[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Fill: solidFill(key.fill),
		Font: &excelize.Font{Size: bodyFontSize},
		Alignment: &excelize.Alignment{
			Horizontal: key.horizontal,
			Vertical:   "center",
			WrapText:   key.horizontal == "center",
		},
	}
	if key.date {
		format := dateNumberFormat
		style.CustomNumFmt = &format
	}

	id, err := s.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create body style: %w", err)
	}
	s.body[key] = id
	return id, nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}
