package asm

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Parser drives one assembly parse: the lexer, the symbol table, and
// the streamer together own the statement loop described in spec.md
// §4. A Parser is single-use — its symbol table's lifecycle equals one
// parse (spec.md §5) — so concurrent parses each construct their own.
type Parser struct {
	lex  *Lexer
	syms *SymbolTable
	str  Streamer

	cur    Token
	peek   *Token
	diags  []Diagnostic
	hadErr bool

	// includer resolves a .include operand to file contents. Defaults
	// to os.ReadFile; tests substitute an in-memory map so scenario 4
	// (spec.md §8) doesn't touch the filesystem.
	includer func(name string) ([]byte, error)
}

// New returns a Parser that will drive str with the events of whatever
// files are added via AddFile.
func New(str Streamer) *Parser {
	return &Parser{
		lex:      NewLexer(),
		syms:     NewSymbolTable(),
		str:      str,
		includer: func(name string) ([]byte, error) {
			b, err := os.ReadFile(name)
			if err != nil {
				return nil, errors.Wrap(err, "read %q", name)
			}
			return b, nil
		},
	}
}

// SetIncluder overrides how .include operands are resolved to file
// contents.
func (p *Parser) SetIncluder(f func(name string) ([]byte, error)) {
	p.includer = f
}

// AddFile pushes text, named name, as the (or an additional) top-level
// input. Call before Run; .include directives push further frames
// themselves during Run.
func (p *Parser) AddFile(ctx context.Context, name string, text []byte) {
	p.lex.PushFile(name, text)
}

// Diagnostics returns every diagnostic collected by the most recent
// Run.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.diags
}

// Run drives the statement loop to completion. hadError reports
// whether any statement produced a diagnostic of severity Error; err
// is non-nil only for a lexer failure severe enough that recovery
// can't continue (e.g. an unterminated string at EOF).
func (p *Parser) Run(ctx context.Context) (hadError bool, err error) {
	if err := p.advance(); err != nil {
		return true, err
	}

	for p.cur.Kind != EOF {
		if p.cur.Kind == EndOfStatement {
			if err := p.advance(); err != nil {
				return true, err
			}
			continue
		}

		if err := p.statement(ctx); err != nil {
			return true, err
		}
	}

	tlog.Printw("asm parse done", "had_error", p.hadErr, "diagnostics", len(p.diags))

	return p.hadErr, nil
}

func (p *Parser) advance() error {
	if p.peek != nil {
		p.cur = *p.peek
		p.peek = nil

		return nil
	}

	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.cur = tok

	return nil
}

// peekTok returns the token after cur without consuming it, caching it
// in p.peek so the next advance() is free.
func (p *Parser) peekTok() (Token, error) {
	if p.peek == nil {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}

		p.peek = &tok
	}

	return *p.peek, nil
}

func (p *Parser) errorf(pos Pos, format string, args ...any) {
	p.hadErr = true
	p.diags = append(p.diags, Diagnostic{
		File:     p.lex.File(),
		Pos:      pos,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (p *Parser) warnf(pos Pos, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		File:     p.lex.File(),
		Pos:      pos,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
	})
}

// recover consumes tokens through the next EndOfStatement (or EOF),
// per spec.md §4.4's per-statement recovery contract.
func (p *Parser) recover() error {
	for p.cur.Kind != EndOfStatement && p.cur.Kind != EOF {
		if err := p.advance(); err != nil {
			return err
		}
	}

	if p.cur.Kind == EndOfStatement {
		return p.advance()
	}

	return nil
}

// statement classifies and parses exactly one statement, then
// recovers on error so Run's loop can continue.
func (p *Parser) statement(ctx context.Context) error {
	if p.cur.Kind == Ident && len(p.cur.Text) > 0 && p.cur.Text[0] == '.' {
		ndiags := len(p.diags)
		if err := p.directive(ctx); err != nil {
			return err
		}
		if p.hadErrThisStatement(ndiags) {
			return p.recover()
		}
		return p.expectEndOfStatement()
	}

	if p.cur.Kind == Ident {
		name := p.cur.Text
		pos := p.cur.Pos

		next, err := p.peekTok()
		if err != nil {
			return err
		}

		switch next.Kind {
		case Colon:
			if err := p.advance(); err != nil { // consume ident
				return err
			}
			if err := p.advance(); err != nil { // consume ':'
				return err
			}

			sym := p.syms.Get(name)
			if sym.Defined {
				p.errorf(pos, "symbol %q already defined", name)
				return p.recover()
			}

			sym.Defined = true
			sym.External = false
			sym.DefPos = pos
			p.str.EmitLabel(sym)

			return nil

		case Equals:
			if err := p.advance(); err != nil { // consume ident
				return err
			}
			if err := p.advance(); err != nil { // consume '='
				return err
			}

			sym := p.syms.Get(name)
			if sym.Defined {
				p.errorf(pos, "symbol %q already defined", name)
				return p.recover()
			}

			e, err := p.parseExpr(0)
			if err != nil {
				return err
			}

			val, ok := EvaluateRelocatable(e)
			if !ok {
				p.errorf(pos, "could not evaluate assignment to %q", name)
				return p.recover()
			}

			sym.Defined = true
			sym.External = false
			sym.Value = val
			sym.DefPos = pos
			p.str.EmitAssignment(sym, val, false)

			return p.expectEndOfStatement()

		default:
			if err := p.instruction(ctx); err != nil {
				return err
			}

			return p.expectEndOfStatement()
		}
	}

	p.errorf(p.cur.Pos, "unexpected token %v", p.cur)

	return p.recover()
}

// hadErrThisStatement is a narrow helper: directive() reports its own
// errors via p.errorf and leaves p.hadErr set, but Run's loop needs to
// know whether *this* statement specifically failed so it can recover
// instead of calling expectEndOfStatement on a stream it already
// desynced from. from is len(p.diags) at the start of the statement.
func (p *Parser) hadErrThisStatement(from int) bool {
	for _, d := range p.diags[from:] {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

func (p *Parser) expectEndOfStatement() error {
	if p.cur.Kind == EOF {
		return nil
	}

	if p.cur.Kind != EndOfStatement {
		p.errorf(p.cur.Pos, "unexpected trailing token %v", p.cur)
		return p.recover()
	}

	return p.advance()
}

// instruction parses a generic "mnemonic operand, operand, ..." form
// and forwards it to the streamer uninterpreted; decoding into a real
// target's encoding is target/arm64demo's job, not this package's.
func (p *Parser) instruction(ctx context.Context) error {
	mnemonic := p.cur.Text
	if err := p.advance(); err != nil {
		return err
	}

	var ops []Expr

	for p.cur.Kind != EndOfStatement && p.cur.Kind != EOF {
		e, err := p.parseExpr(0)
		if err != nil {
			return err
		}

		ops = append(ops, e)

		if p.cur.Kind != Comma {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}

	p.str.EmitInstruction(mnemonic, ops)

	return nil
}

// parseExpr implements precedence climbing over the table in spec.md
// §4.3: primary expressions bottom out parsePrimary, then binary
// operators are folded left-to-right respecting binPrec, recursing on
// the right-hand side whenever the next operator binds tighter.
func (p *Parser) parseExpr(minPrec int) (Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		prec := binPrec(p.cur.Kind)
		if prec < 0 || prec < minPrec {
			return lhs, nil
		}

		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}

		rhs, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}

		lhs = Binary{Op: op, L: lhs, R: rhs}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.cur.Kind {
	case Int:
		v := p.cur.IVal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return IntLit{Val: v}, nil

	case Plus, Minus, Tilde, Exclaim:
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil

	case LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != RParen {
			p.errorf(p.cur.Pos, "expected ')', got %v", p.cur)
			return nil, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return e, nil

	case Ident:
		sym := p.syms.Get(p.cur.Text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return SymbolRef{Sym: sym}, nil

	default:
		pos := p.cur.Pos
		p.errorf(pos, "expected expression, got %v", p.cur)
		return IntLit{Val: 0}, nil
	}
}
