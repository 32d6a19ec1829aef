package invoice

// FieldStatus records the outcome of one extraction rule.
type FieldStatus struct {
	Name   string `json:"name"`
	Source Source `json:"source"`
}

// Report lists which fields were recovered from the document and which fell
// back to defaults. It is the input for confidence scoring.
type Report struct {
	Fields []FieldStatus `json:"fields"`

	// DateCandidate is the first date-like token seen in the text. It is not
	// applied to the invoice date.
	DateCandidate string `json:"date_candidate,omitempty"`
}

func (r *Report) record(name string, src Source) {
	r.Fields = append(r.Fields, FieldStatus{Name: name, Source: src})
}

// Found returns the number of fields recovered from the document.
func (r Report) Found() int {
	n := 0
	for _, f := range r.Fields {
		if f.Source == SourceDocument {
			n++
		}
	}
	return n
}

// Defaulted returns the names of fields that fell back to defaults.
func (r Report) Defaulted() []string {
	var names []string
	for _, f := range r.Fields {
		if f.Source == SourceDefault {
			names = append(names, f.Name)
		}
	}
	return names
}

// Confidence is the share of recorded fields recovered from the document,
// normalized to [0.0, 1.0].
func (r Report) Confidence() float64 {
	if len(r.Fields) == 0 {
		return 0
	}
	return float64(r.Found()) / float64(len(r.Fields))
}
