package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gogpu/fragpipe"
	"github.com/gogpu/fragpipe/pipeline"
	"github.com/gogpu/fragpipe/transform"
)

// Option configures a Parser.
type Option func(*Parser)

// WithRegistry sets the transforms that process instructions may name.
// The default is transform.Builtins().
func WithRegistry(r *transform.Registry) Option {
	return func(p *Parser) {
		p.registry = r
	}
}

// WithStorage sets the storage used by load and save tasks.
// The default is pipeline.FileStorage.
func WithStorage(s pipeline.Storage) Option {
	return func(p *Parser) {
		p.storage = s
	}
}

// WithArgs sets the positional arguments exposed as %0, %1, ...
func WithArgs(args ...string) Option {
	return func(p *Parser) {
		p.args = args
	}
}

// Parser turns scripts into task lists.
//
// Thread safety: a Parser is immutable after NewParser and may be shared.
// Every Parse call works on its own alias table.
type Parser struct {
	registry *transform.Registry
	storage  pipeline.Storage
	args     []string
}

// NewParser creates a parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = transform.Builtins()
	}
	if p.storage == nil {
		p.storage = pipeline.FileStorage{}
	}
	return p
}

// ParseFile reads and parses the script at path.
func (p *Parser) ParseFile(path string) ([]pipeline.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &fragpipe.IOError{Op: "read script", Path: path, Err: err}
	}
	defer f.Close()
	return p.Parse(f)
}

// ParseString parses a script held in memory.
func (p *Parser) ParseString(src string) ([]pipeline.Task, error) {
	return p.Parse(strings.NewReader(src))
}

// MaxLineLength is the longest instruction line Parse accepts, in bytes.
const MaxLineLength = 1 << 20

// Parse reads a script from r. It stops at the first invalid instruction.
func (p *Parser) Parse(r io.Reader) ([]pipeline.Task, error) {
	st := &state{
		parser:  p,
		aliases: make(map[string]string, len(p.args)),
	}
	for i, arg := range p.args {
		st.aliases["%"+strconv.Itoa(i)] = arg
	}

	var tasks []pipeline.Task
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" || isComment(text) {
			continue
		}

		tokens, col, err := tokenize(text)
		if err != nil {
			return nil, &ParseError{Line: line, Column: col, Text: text, Msg: err.Error()}
		}
		if len(tokens) == 0 {
			continue
		}
		st.line, st.text = line, text

		task, err := st.instruction(tokens[0], tokens[1:])
		if err != nil {
			return nil, err
		}
		if task != nil {
			tasks = append(tasks, task)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: line + 1, Msg: fmt.Sprintf("line longer than %d bytes", MaxLineLength)}
		}
		return nil, fmt.Errorf("script: read: %w", err)
	}
	return tasks, nil
}

// state is the mutable side of one Parse call.
type state struct {
	parser  *Parser
	aliases map[string]string

	line int
	text string
}

func (st *state) errorf(col int, format string, args ...any) *ParseError {
	return &ParseError{Line: st.line, Column: col, Text: st.text, Msg: fmt.Sprintf(format, args...)}
}

// resolve applies the alias table to an argument. Aliases are not
// applied recursively.
func (st *state) resolve(t token) string {
	if v, ok := st.aliases[t.text]; ok {
		return v
	}
	return t.text
}

func (st *state) instruction(head token, args []token) (pipeline.Task, error) {
	if strings.HasPrefix(head.text, "#") {
		return nil, st.directive(head, args)
	}

	name := normalizeVerb(head.text)
	v, ok := verbs[name]
	if !ok {
		return nil, st.errorf(head.col, "unknown instruction %q", head.text)
	}
	if len(args) < v.minArgs || len(args) > v.maxArgs {
		if v.minArgs == v.maxArgs {
			return nil, st.errorf(head.col, "%s expects %d arguments, got %d", name, v.minArgs, len(args))
		}
		return nil, st.errorf(head.col, "%s expects %d..%d arguments, got %d", name, v.minArgs, v.maxArgs, len(args))
	}
	return v.build(st, args)
}

func (st *state) directive(head token, args []token) error {
	if normalizeVerb(head.text) != "#alias" {
		return st.errorf(head.col, "unknown directive %q", head.text)
	}
	if len(args) != 2 {
		return st.errorf(head.col, "#alias expects 2 arguments, got %d", len(args))
	}
	st.aliases[args[0].text] = st.resolve(args[1])
	return nil
}

// normalizeVerb folds case and drops underscores.
func normalizeVerb(s string) string {
	return cases.Fold().String(strings.ReplaceAll(s, "_", ""))
}

// positive parses a natural number argument.
func (st *state) positive(t token, what string) (int, error) {
	s := st.resolve(t)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, st.errorf(t.col, "%s must be a positive integer, got %q", what, s)
	}
	return n, nil
}

// saveFormat parses an image format that can be written.
func (st *state) saveFormat(t token) (fragpipe.Format, error) {
	s := st.resolve(t)
	f, err := fragpipe.ParseFormat(s)
	if err != nil {
		return 0, st.errorf(t.col, "unrecognized image format %q", s)
	}
	if !f.CanEncode() {
		return 0, st.errorf(t.col, "image format %q cannot be saved", s)
	}
	return f, nil
}

// transform resolves a transform name against the parser's registry.
func (st *state) transform(t token) (fragpipe.Transform, string, error) {
	name := st.resolve(t)
	fn, ok := st.parser.registry.Lookup(name)
	if !ok {
		return nil, "", st.errorf(t.col, "unknown transform %q", name)
	}
	return fn, name, nil
}
