package specs

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var errNoRootElement = errors.New("document has no root element")

// checkWellFormed decodes the full token stream so unbalanced tags and stray
// content after the root element are reported before the row reaches Postgres.
func checkWellFormed(doc string) error {
	decoder := xml.NewDecoder(strings.NewReader(doc))
	depth := 0
	roots := 0
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return errors.New("document has more than one root element")
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return errors.New("text outside the root element")
			}
		}
	}
	if roots == 0 {
		return errNoRootElement
	}
	return nil
}
