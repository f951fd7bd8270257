package binderr

// Sink accepts diagnostics. It is append-only.
type Sink interface {
	Add(Diagnostic)
}

// Bag is a Sink that keeps every diagnostic in order.
type Bag struct {
	items []Diagnostic
}

// Add appends d.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Diagnostics returns the collected diagnostics in report order.
func (b *Bag) Diagnostics() []Diagnostic { return b.items }

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// HasErrors reports whether any collected diagnostic has Error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Codes returns the codes of the collected diagnostics in report order.
func (b *Bag) Codes() []Code {
	var codes []Code
	for _, d := range b.items {
		codes = append(codes, d.Code)
	}
	return codes
}

// AddTo copies every collected diagnostic into sink.
func (b *Bag) AddTo(sink Sink) {
	for _, d := range b.items {
		sink.Add(d)
	}
}

// Err returns the Error-severity diagnostics as a *MultiError,
// or nil if there are none.
func (b *Bag) Err() error {
	var errs []error
	for _, d := range b.items {
		if d.Severity == Error {
			errs = append(errs, d)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &MultiError{Errors: errs}
}

type discard struct{}

func (discard) Add(Diagnostic) {}

// Discard is a Sink that drops everything.
// It is used for speculative sub-attempts whose failures must not be visible.
var Discard Sink = discard{}
