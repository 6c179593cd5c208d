// core/formula/parser.go
package formula

type parser struct {
	in  string
	pos int
}

func (p *parser) errf(msg string) error {
	return &ParseError{Input: p.in, Pos: p.pos, Msg: msg}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.in) {
		return 0, false
	}
	return p.in[p.pos], true
}

// parseGroup consumes components until ')' (top=false) or end of input
// (top=true). The closing ')' is consumed by the caller of the nested group.
func (p *parser) parseGroup(top bool) ([]Component, error) {
	var comps []Component
	for {
		c, ok := p.peek()
		if !ok {
			if !top {
				return nil, p.errf("unclosed '('")
			}
			return comps, nil
		}
		switch {
		case c == ')':
			if top {
				return nil, p.errf("unmatched ')'")
			}
			return comps, nil

		case c == '(':
			p.pos++
			inner, err := p.parseGroup(false)
			if err != nil {
				return nil, err
			}
			p.pos++ // ')'
			n := p.parseCount()
			if n == 0 {
				return nil, p.errf("zero group count")
			}
			for _, ic := range inner {
				ic.Count *= n
				comps = append(comps, ic)
			}

		case c == '[':
			comp, err := p.parseIsotope()
			if err != nil {
				return nil, err
			}
			comps = append(comps, comp)

		case c >= 'A' && c <= 'Z':
			comp, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			comps = append(comps, comp)

		default:
			return nil, p.errf("unexpected character")
		}
	}
}

// parseElement consumes Symbol[count]. "D" is shorthand for [2H].
func (p *parser) parseElement() (Component, error) {
	start := p.pos
	p.pos++
	for {
		c, ok := p.peek()
		if !ok || c < 'a' || c > 'z' {
			break
		}
		p.pos++
	}
	sym := p.in[start:p.pos]
	n := p.parseCount()
	if n == 0 {
		return Component{}, p.errf("zero element count")
	}
	if sym == "D" {
		return Component{Symbol: "H", MassNumber: 2, Count: n}, nil
	}
	return Component{Symbol: sym, Count: n}, nil
}

// parseIsotope consumes [massNumberSymbol]count, e.g. [2H]8 or [13C].
func (p *parser) parseIsotope() (Component, error) {
	p.pos++ // '['
	massStart := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return Component{}, p.errf("unclosed '['")
		}
		if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	if p.pos == massStart {
		return Component{}, p.errf("missing isotope mass number")
	}
	mass := 0
	for _, d := range p.in[massStart:p.pos] {
		mass = mass*10 + int(d-'0')
	}

	symStart := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return Component{}, p.errf("unclosed '['")
		}
		if c == ']' {
			break
		}
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			p.pos++
			continue
		}
		return Component{}, p.errf("bad isotope symbol")
	}
	sym := p.in[symStart:p.pos]
	if sym == "" {
		return Component{}, p.errf("missing isotope symbol")
	}
	p.pos++ // ']'
	n := p.parseCount()
	if n == 0 {
		return Component{}, p.errf("zero isotope count")
	}
	return Component{Symbol: sym, MassNumber: mass, Count: n}, nil
}

// parseCount consumes an optional positive integer, defaulting to 1.
func (p *parser) parseCount() int {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return 1
	}
	n := 0
	for _, d := range p.in[start:p.pos] {
		n = n*10 + int(d-'0')
	}
	return n
}
