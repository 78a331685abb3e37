package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
)

var (
	slidePart = regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)
	notesPart = regexp.MustCompile(`^ppt/notesSlides/notesSlide\d+\.xml$`)
)

// CountSlides reports how many slides a PPTX package contains.
func CountSlides(pptx []byte) (int, error) {
	return countParts(pptx, slidePart)
}

// CountNotes reports how many notes slides a PPTX package contains.
func CountNotes(pptx []byte) (int, error) {
	return countParts(pptx, notesPart)
}

func countParts(pptx []byte, re *regexp.Regexp) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(pptx), int64(len(pptx)))
	if err != nil {
		return 0, fmt.Errorf("open pptx: %w", err)
	}
	n := 0
	for _, f := range zr.File {
		if re.MatchString(f.Name) {
			n++
		}
	}
	return n, nil
}
