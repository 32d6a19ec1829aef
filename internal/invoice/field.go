package invoice

// Source tells whether a value was recovered from the document or substituted.
type Source int

const (
	SourceDefault Source = iota
	SourceDocument
)

func (s Source) String() string {
	if s == SourceDocument {
		return "found"
	}
	return "defaulted"
}

// MarshalText encodes the source as "found" or "defaulted".
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Field is an extracted value tagged with its Source.
type Field[T any] struct {
	Value  T
	Source Source
}

// Found wraps a value recovered from the document.
func Found[T any](v T) Field[T] {
	return Field[T]{Value: v, Source: SourceDocument}
}

// Defaulted wraps a substituted value.
func Defaulted[T any](v T) Field[T] {
	return Field[T]{Value: v, Source: SourceDefault}
}

// IsFound reports whether the value came from the document.
func (f Field[T]) IsFound() bool {
	return f.Source == SourceDocument
}
