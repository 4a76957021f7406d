package model

// Page is one page of normalized text from a source document
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is the unit of ingestion: normalized page text plus identity.
// Text extraction from binary formats happens upstream; the pipeline
// only ever sees plain text.
type Document struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Pages    []Page `json:"pages"`
}

// Empty reports whether the document carries any non-blank text.
func (d Document) Empty() bool {
	for _, p := range d.Pages {
		if len(p.Text) > 0 {
			return false
		}
	}
	return true
}
