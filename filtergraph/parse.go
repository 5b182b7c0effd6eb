package filtergraph

import (
	"strings"

	"github.com/xaionaro-go/avhwaccel/types"
)

// Parse parses the subset of the libav filter graph syntax without pad
// labels: chains are separated by ';', filters by ',' and arguments by
// ':'. A backslash escapes the next character.
func Parse(
	text string,
	sinkMedias ...types.MediaType,
) (*Graph, error) {
	g := New(sinkMedias)
	if strings.TrimSpace(text) == "" {
		return g, nil
	}

	p := &parser{text: text}
	for {
		chain, err := p.chain()
		if err != nil {
			return nil, err
		}
		g.Chains = append(g.Chains, chain)
		if p.eof() {
			return g, nil
		}
		p.pos++ // ';'
	}
}

type parser struct {
	text string
	pos  int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *parser) errorf(reason string) error {
	return ErrParse{Text: p.text, Offset: p.pos, Reason: reason}
}

func (p *parser) chain() (Chain, error) {
	var chain Chain
	for {
		node, err := p.node()
		if err != nil {
			return nil, err
		}
		chain = append(chain, node)
		if p.eof() || p.text[p.pos] == ';' {
			return chain, nil
		}
		p.pos++ // ','
	}
}

func (p *parser) node() (*Node, error) {
	p.skipSpaces()
	if !p.eof() && p.text[p.pos] == '[' {
		return nil, p.errorf("pad labels are not supported")
	}
	name, _ := p.token("=,;")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, p.errorf("empty filter name")
	}
	node := NewNode(name)
	if p.eof() || p.text[p.pos] != '=' {
		return node, nil
	}
	p.pos++ // '='

	for {
		arg, err := p.arg()
		if err != nil {
			return nil, err
		}
		node.Args = append(node.Args, arg)
		if p.eof() || p.text[p.pos] != ':' {
			return node, nil
		}
		p.pos++ // ':'
	}
}

func (p *parser) arg() (Arg, error) {
	start := p.pos
	value, stop := p.token("=:,;")
	if stop != '=' {
		return Arg{Value: value}, nil
	}
	p.pos++ // '='
	key := value
	if key == "" {
		p.pos = start
		return Arg{}, p.errorf("empty option name")
	}
	value, _ = p.token(":,;")
	return Arg{Key: key, Value: value}, nil
}

// token reads until one of the unescaped stop characters and returns
// the read text and the stop character (0 at the end of the text).
func (p *parser) token(stops string) (string, byte) {
	var b strings.Builder
	for !p.eof() {
		c := p.text[p.pos]
		if c == '\\' && p.pos+1 < len(p.text) {
			b.WriteByte(p.text[p.pos+1])
			p.pos += 2
			continue
		}
		if strings.IndexByte(stops, c) >= 0 {
			return b.String(), c
		}
		b.WriteByte(c)
		p.pos++
	}
	return b.String(), 0
}

func (p *parser) skipSpaces() {
	for !p.eof() && (p.text[p.pos] == ' ' || p.text[p.pos] == '\n' || p.text[p.pos] == '\t') {
		p.pos++
	}
}

func escape(s string) string {
	if !strings.ContainsAny(s, `=:,;\[]`) {
		return s
	}
	var b strings.Builder
	for idx := 0; idx < len(s); idx++ {
		if strings.IndexByte(`=:,;\[]`, s[idx]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[idx])
	}
	return b.String()
}
