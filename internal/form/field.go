package form

// Kind names the input type a field renders as.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindEmail    Kind = "email"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindFile     Kind = "file"
)

// Base holds the attributes every field variant shares.
type Base struct {
	Name        string
	Label       string
	Required    bool
	Min         *float64
	Max         *float64
	Placeholder string
}

// Field is one of Text, Number, Email, Textarea, Select or File. The set is
// closed: only this package can add variants.
type Field interface {
	Attrs() Base
	Kind() Kind
	isField()
}

type Text struct{ Base }

type Number struct {
	Base
	Step string
}

type Email struct{ Base }

type Textarea struct {
	Base
	Rows int
}

// Option is a select choice.
type Option struct {
	Value string
	Label string
}

type Select struct {
	Base
	Options []Option
}

type File struct {
	Base
	// Accept defaults to "image/*".
	Accept string
}

func (f Text) Attrs() Base     { return f.Base }
func (f Number) Attrs() Base   { return f.Base }
func (f Email) Attrs() Base    { return f.Base }
func (f Textarea) Attrs() Base { return f.Base }
func (f Select) Attrs() Base   { return f.Base }
func (f File) Attrs() Base     { return f.Base }

func (Text) Kind() Kind     { return KindText }
func (Number) Kind() Kind   { return KindNumber }
func (Email) Kind() Kind    { return KindEmail }
func (Textarea) Kind() Kind { return KindTextarea }
func (Select) Kind() Kind   { return KindSelect }
func (File) Kind() Kind     { return KindFile }

func (Text) isField()     {}
func (Number) isField()   {}
func (Email) isField()    {}
func (Textarea) isField() {}
func (Select) isField()   {}
func (File) isField()     {}

// Bound returns a pointer for Min/Max literals.
func Bound(v float64) *float64 { return &v }

func (f File) accept() string {
	if f.Accept == "" {
		return "image/*"
	}
	return f.Accept
}
