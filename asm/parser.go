package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Line is one parsed assembly line: an optional label definition followed by
// either an instruction mnemonic with operands or an assembler directive.
type Line struct {
	Label     string
	Mnemonic  string
	Operands  []string
	Directive string
	DirArgs   []string
	LineNo    int
}

// IsEmpty reports whether the line has nothing to assemble (a bare label or
// a blank/comment-only line already consumed by the lexer).
func (l *Line) IsEmpty() bool {
	return l.Mnemonic == "" && l.Directive == ""
}

// Parser turns a token stream into a sequence of Lines.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a Parser over tokens (as produced by Lexer.Tokenize).
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// ParseLines parses the entire token stream into Lines, skipping blank lines.
func (p *Parser) ParseLines() ([]Line, error) {
	var lines []Line

	for p.peek().Type != TokenEOF {
		if p.peek().Type == TokenNewline {
			p.next()
			continue
		}

		line, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		if !line.IsEmpty() || line.Label != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

func (p *Parser) parseLine() (Line, error) {
	lineNo := p.peek().Pos.Line
	line := Line{LineNo: lineNo}

	if p.peek().Type == TokenIdentifier && p.peekAhead(1).Type == TokenColon {
		line.Label = p.next().Literal
		p.next() // consume ':'
	}

	if p.peek().Type == TokenNewline || p.peek().Type == TokenEOF {
		if p.peek().Type == TokenNewline {
			p.next()
		}
		return line, nil
	}

	if p.peek().Type != TokenIdentifier {
		return line, fmt.Errorf("line %d: expected mnemonic or directive, got %s", lineNo, p.peek().Type)
	}

	word := p.next().Literal

	if strings.HasPrefix(word, ".") {
		line.Directive = strings.ToLower(word)
		line.DirArgs = p.parseOperands()
	} else {
		line.Mnemonic = strings.ToLower(word)
		line.Operands = p.parseOperands()
	}

	if p.peek().Type == TokenNewline {
		p.next()
	}

	return line, nil
}

func (p *Parser) peekAhead(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[idx]
}

// parseOperands collects comma-separated operands until end of line,
// reassembling "imm(reg)" memory operands and negative numbers into single
// operand strings.
func (p *Parser) parseOperands() []string {
	var operands []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			operands = append(operands, s)
		}
		current.Reset()
	}

	for {
		tok := p.peek()
		switch tok.Type {
		case TokenNewline, TokenEOF:
			flush()
			return operands
		case TokenComma:
			p.next()
			flush()
		case TokenMinus:
			p.next()
			current.WriteString("-")
		case TokenLParen, TokenRParen:
			p.next()
			current.WriteString(tok.Literal)
		case TokenString:
			p.next()
			current.WriteString(strconv.Quote(tok.Literal))
		default:
			p.next()
			if current.Len() > 0 && !strings.HasSuffix(current.String(), "(") && !strings.HasSuffix(current.String(), "-") {
				current.WriteString(" ")
			}
			current.WriteString(tok.Literal)
		}
	}
}
