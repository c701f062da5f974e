package ast

// Keyword names.
const (
	If      = "if"
	Elif    = "elif"
	Else    = "else"
	Foreach = "foreach"
	Raw     = "raw"
	End     = "end"
)

// Keyword describes how a construct keyword is lexed.
type Keyword struct {
	Name        string
	NeedsArg    bool
	OpensBlock  bool
	Closers     []string // keywords that terminate the block, if OpensBlock
	Continuable bool     // may continue an if chain (elif, else)
}

// ClosedBy reports whether the block opened by k is terminated by keyword.
func (k *Keyword) ClosedBy(keyword string) bool {
	for _, c := range k.Closers {
		if c == keyword {
			return true
		}
	}
	return false
}

// Keywords is the static keyword table shared by the lexer and the code
// generator. It must not be modified.
var Keywords = map[string]*Keyword{
	If:      {Name: If, NeedsArg: true, OpensBlock: true, Closers: []string{End, Elif, Else}},
	Elif:    {Name: Elif, NeedsArg: true, OpensBlock: true, Closers: []string{End, Elif, Else}, Continuable: true},
	Else:    {Name: Else, OpensBlock: true, Closers: []string{End}, Continuable: true},
	Foreach: {Name: Foreach, NeedsArg: true, OpensBlock: true, Closers: []string{End}},
	Raw:     {Name: Raw, NeedsArg: true},
	End:     {Name: End},
}
