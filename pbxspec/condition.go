// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pbxspec

import (
	"fmt"
	"strings"

	"github.com/xcbuild/xcbuild/pbxsetting"
)

// EvaluateCondition evaluates an option condition such as
// "$(GCC_ENABLE_X) == YES && $(arch) != i386".  Operands are expanded with
// expand; a lone operand is true when it parses as a boolean true.
// Supported operators are ==, !=, &&, || and !, with parentheses.
func EvaluateCondition(expr string, expand func(string) string) (bool, error) {
	tokens, err := tokenizeCondition(expr)
	if err != nil {
		return false, err
	}
	p := &conditionParser{tokens: tokens, expand: expand}
	if len(tokens) == 0 {
		return true, nil
	}
	v, err := p.or()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.tokens) {
		return false, fmt.Errorf("condition %q: unexpected %q", expr, p.tokens[p.pos].text)
	}
	return v, nil
}

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokOp
)

type conditionToken struct {
	kind tokenKind
	text string
}

func tokenizeCondition(expr string) ([]conditionToken, error) {
	var tokens []conditionToken
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case strings.HasPrefix(expr[i:], "&&"), strings.HasPrefix(expr[i:], "||"),
			strings.HasPrefix(expr[i:], "=="), strings.HasPrefix(expr[i:], "!="):
			tokens = append(tokens, conditionToken{tokOp, expr[i : i+2]})
			i += 2
		case c == '!' || c == '(' || c == ')':
			tokens = append(tokens, conditionToken{tokOp, string(c)})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(expr[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("condition %q: unterminated string", expr)
			}
			tokens = append(tokens, conditionToken{tokOperand, expr[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			depth := 0
			for i < len(expr) {
				c := expr[i]
				if c == '$' && i+1 < len(expr) && (expr[i+1] == '(' || expr[i+1] == '{') {
					depth++
					i += 2
					continue
				}
				if depth > 0 {
					if c == ')' || c == '}' {
						depth--
					}
					i++
					continue
				}
				if strings.ContainsRune(" \t()!&|=", rune(c)) {
					break
				}
				i++
			}
			if i == start {
				return nil, fmt.Errorf("condition %q: unexpected %q", expr, c)
			}
			tokens = append(tokens, conditionToken{tokOperand, expr[start:i]})
		}
	}
	return tokens, nil
}

type conditionParser struct {
	tokens []conditionToken
	pos    int
	expand func(string) string
}

func (p *conditionParser) peekOp(op string) bool {
	return p.pos < len(p.tokens) && p.tokens[p.pos].kind == tokOp && p.tokens[p.pos].text == op
}

func (p *conditionParser) or() (bool, error) {
	v, err := p.and()
	for err == nil && p.peekOp("||") {
		p.pos++
		var rhs bool
		rhs, err = p.and()
		v = v || rhs
	}
	return v, err
}

func (p *conditionParser) and() (bool, error) {
	v, err := p.unary()
	for err == nil && p.peekOp("&&") {
		p.pos++
		var rhs bool
		rhs, err = p.unary()
		v = v && rhs
	}
	return v, err
}

func (p *conditionParser) unary() (bool, error) {
	if p.peekOp("!") {
		p.pos++
		v, err := p.unary()
		return !v, err
	}
	if p.peekOp("(") {
		p.pos++
		v, err := p.or()
		if err != nil {
			return false, err
		}
		if !p.peekOp(")") {
			return false, fmt.Errorf("condition: missing ')'")
		}
		p.pos++
		return v, nil
	}
	lhs, err := p.operand()
	if err != nil {
		return false, err
	}
	for _, op := range []string{"==", "!="} {
		if p.peekOp(op) {
			p.pos++
			rhs, err := p.operand()
			if err != nil {
				return false, err
			}
			if op == "==" {
				return lhs == rhs, nil
			}
			return lhs != rhs, nil
		}
	}
	return pbxsetting.ParseBoolean(lhs), nil
}

func (p *conditionParser) operand() (string, error) {
	if p.pos >= len(p.tokens) {
		return "", fmt.Errorf("condition: expected an operand")
	}
	t := p.tokens[p.pos]
	if t.kind != tokOperand {
		return "", fmt.Errorf("condition: unexpected %q", t.text)
	}
	p.pos++
	return p.expand(t.text), nil
}
