package template

import "strings"

// Template is a parsed template string: an ordered sequence of literal and
// expression segments. The source string is retained so String is exact.
type Template struct {
	source   string
	segments []Segment
}

// Segment is one piece of a template in source order. Either Text is set
// (literal segment) or Expr is set (expression segment), never both.
type Segment struct {
	// Offset is the byte offset of the segment in the source string.
	Offset int
	Text   string
	Expr   Expression
}

// Expression is a parsed {{ }} or {% %} body.
type Expression interface {
	// String re-serializes the expression in canonical syntax. Argument
	// and path content is byte-identical to what was parsed.
	String() string
	isExpression()
}

// VariableRef is a {{ path.to.value }} reference, resolved against profile
// data and the reserved built-ins.
type VariableRef struct {
	Path []string
}

func (v *VariableRef) String() string {
	return "{{" + strings.Join(v.Path, ".") + "}}"
}

func (v *VariableRef) isExpression() {}

// Argument is one function-call argument, literal at parse time. Quoted
// records the source quoting style so re-serialization is faithful:
// 'text' arguments keep their quotes, bare numbers stay bare.
type Argument struct {
	Value  string
	Quoted bool
}

func (a Argument) String() string {
	if a.Quoted {
		return "'" + a.Value + "'"
	}
	return a.Value
}

// FunctionCall is a {% name 'arg1', 'arg2', 60 %} expression. The name is
// accepted structurally; whether it exists is the evaluator's business.
type FunctionCall struct {
	Name string
	Args []Argument
}

func (c *FunctionCall) String() string {
	var b strings.Builder
	b.WriteString("{% ")
	b.WriteString(c.Name)
	for i, arg := range c.Args {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteString(" %}")
	return b.String()
}

func (c *FunctionCall) isExpression() {}

// Segments returns the parsed segments in source order.
func (t *Template) Segments() []Segment {
	return t.segments
}

// String returns the original source string.
func (t *Template) String() string {
	return t.source
}

// IsLiteral reports whether the template contains no expressions.
func (t *Template) IsLiteral() bool {
	for _, seg := range t.segments {
		if seg.Expr != nil {
			return false
		}
	}
	return true
}

// Expressions returns just the expression segments, in source order.
func (t *Template) Expressions() []Expression {
	var out []Expression
	for _, seg := range t.segments {
		if seg.Expr != nil {
			out = append(out, seg.Expr)
		}
	}
	return out
}
