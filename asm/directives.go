package asm

import (
	"context"
)

// directive dispatches on the current '.'-prefixed identifier and
// parses the rest of the statement per the grammar in spec.md §4.4.
// Each branch validates operand types/range/trailing-token absence,
// then calls the matching Streamer method; on any validation failure
// it reports via p.errorf and returns nil so the caller's recover()
// can resync on the next EndOfStatement.
func (p *Parser) directive(ctx context.Context) error {
	name := p.cur.Text
	pos := p.cur.Pos

	if err := p.advance(); err != nil {
		return err
	}

	switch name {
	case ".text", ".data", ".bss", ".cstring", ".const", ".rodata":
		p.str.SwitchSection(name)
		return nil

	case ".section":
		return p.dirSection(pos)

	case ".set", ".equiv":
		return p.dirSet(pos, name == ".equiv")

	case ".ascii", ".asciz":
		return p.dirAscii(pos, name == ".asciz")

	case ".byte":
		return p.dirValueList(pos, 1)
	case ".short":
		return p.dirValueList(pos, 2)
	case ".long":
		return p.dirValueList(pos, 4)
	case ".quad":
		return p.dirValueList(pos, 8)

	case ".align", ".p2align", ".balign":
		return p.dirAlign(pos, name)

	case ".space", ".skip":
		return p.dirSpace(pos)

	case ".fill":
		return p.dirFill(pos)

	case ".org":
		return p.dirOrg(pos)

	case ".globl", ".global":
		return p.dirSymbolAttrList(pos, Global)
	case ".weak":
		return p.dirSymbolAttrList(pos, Weak)
	case ".hidden":
		return p.dirSymbolAttrList(pos, Hidden)
	case ".internal":
		return p.dirSymbolAttrList(pos, Internal)
	case ".protected":
		return p.dirSymbolAttrList(pos, Protected)
	case ".no_dead_strip":
		return p.dirSymbolAttrList(pos, NoDeadStrip)
	case ".indirect_symbol":
		return p.dirSymbolAttrList(pos, IndirectSymbol)
	case ".lazy_reference":
		return p.dirSymbolAttrList(pos, LazyReference)
	case ".private_extern":
		return p.dirSymbolAttrList(pos, PrivateExtern)
	case ".reference":
		return p.dirSymbolAttrList(pos, Reference)
	case ".weak_definition":
		return p.dirSymbolAttrList(pos, WeakDefinition)
	case ".weak_reference":
		return p.dirSymbolAttrList(pos, WeakReference)

	case ".comm":
		return p.dirComm(pos, false)
	case ".lcomm":
		return p.dirComm(pos, true)

	case ".zerofill":
		return p.dirZerofill(pos)

	case ".include":
		return p.dirInclude(pos)

	case ".abort":
		return p.dirAbort(pos)

	case ".subsections_via_symbols":
		p.str.EmitAssemblerFlag("SubsectionsViaSymbols")
		return nil

	default:
		p.errorf(pos, "unknown directive %q", name)
		return nil
	}
}

func (p *Parser) expectIdent() (string, Pos, bool) {
	if p.cur.Kind != Ident {
		p.errorf(p.cur.Pos, "expected identifier, got %v", p.cur)
		return "", p.cur.Pos, false
	}

	name, pos := p.cur.Text, p.cur.Pos
	if err := p.advance(); err != nil {
		p.errorf(pos, "%v", err)
		return "", pos, false
	}

	return name, pos, true
}

func (p *Parser) expectComma() bool {
	if p.cur.Kind != Comma {
		p.errorf(p.cur.Pos, "expected ',', got %v", p.cur)
		return false
	}

	return p.advance() == nil
}

func (p *Parser) dirSection(pos Pos) error {
	name, _, ok := p.expectIdent()
	if !ok {
		return nil
	}

	for p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}
		if _, _, ok := p.expectIdent(); !ok {
			return nil
		}
	}

	p.str.SwitchSection(name)

	return nil
}

func (p *Parser) dirSet(pos Pos, isEquiv bool) error {
	name, namePos, ok := p.expectIdent()
	if !ok {
		return nil
	}

	if !p.expectComma() {
		return nil
	}

	e, err := p.parseExpr(0)
	if err != nil {
		return err
	}

	val, ok := EvaluateRelocatable(e)
	if !ok {
		p.errorf(pos, ".set: could not evaluate expression")
		return nil
	}

	sym := p.syms.Get(name)
	if isEquiv && sym.Defined {
		p.errorf(namePos, ".equiv: symbol %q already defined", name)
		return nil
	}

	sym.Defined = true
	sym.External = false
	sym.Value = val
	sym.DefPos = namePos

	p.str.EmitAssignment(sym, val, true)

	return nil
}

func (p *Parser) dirAscii(pos Pos, zero bool) error {
	for {
		if p.cur.Kind != String {
			p.errorf(p.cur.Pos, "expected string literal, got %v", p.cur)
			return nil
		}

		b := []byte(p.cur.Text)
		if zero {
			b = append(b, 0)
		}

		p.str.EmitBytes(b)

		if err := p.advance(); err != nil {
			return err
		}

		if p.cur.Kind != Comma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *Parser) dirValueList(pos Pos, size int) error {
	for {
		e, err := p.parseExpr(0)
		if err != nil {
			return err
		}

		val, ok := EvaluateRelocatable(e)
		if !ok {
			p.errorf(pos, "could not evaluate value")
			return nil
		}

		p.str.EmitValue(val, size)

		if p.cur.Kind != Comma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseAbsExpr(pos Pos, what string) (int64, bool) {
	e, err := p.parseExpr(0)
	if err != nil {
		p.errorf(pos, "%s: %v", what, err)
		return 0, false
	}

	v, ok := EvaluateAbsolute(e)
	if !ok {
		p.errorf(pos, "%s: expected an absolute expression", what)
		return 0, false
	}

	return v, true
}

// dirAlign handles .align/.p2align/.balign. spec.md §4.4: ".align
// rejects negative, and if both a fill-max and an alignment are given,
// emits a warning when max >= alignment and silently clamps max to 0."
func (p *Parser) dirAlign(pos Pos, name string) error {
	alignArg, ok := p.parseAbsExpr(pos, name)
	if !ok {
		return nil
	}

	if alignArg < 0 {
		p.errorf(pos, "%s: alignment must not be negative", name)
		return nil
	}

	align := int(alignArg)
	if name == ".p2align" {
		align = 1 << uint(alignArg)
	}

	fill := int64(0)
	haveFill := false

	if p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}

		v, ok := p.parseAbsExpr(pos, name)
		if !ok {
			return nil
		}

		fill = v
		haveFill = true
	}

	maxBytes := 0

	if p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}

		v, ok := p.parseAbsExpr(pos, name)
		if !ok {
			return nil
		}

		maxBytes = int(v)

		if maxBytes >= align {
			p.warnf(pos, "maximum bytes to fill (%d) has no effect for alignment %d", maxBytes, align)
			maxBytes = 0
		}
	}

	if !haveFill {
		fill = 0
	}

	p.str.EmitValueToAlignment(align, fill, 1, maxBytes)

	return nil
}

func (p *Parser) dirSpace(pos Pos) error {
	size, ok := p.parseAbsExpr(pos, ".space")
	if !ok {
		return nil
	}

	if size < 0 {
		p.errorf(pos, ".space: size must not be negative")
		return nil
	}

	fill := int64(0)

	if p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}

		v, ok := p.parseAbsExpr(pos, ".space")
		if !ok {
			return nil
		}

		fill = v
	}

	p.str.EmitBytes(repeatByte(byte(fill), int(size)))

	return nil
}

func repeatByte(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}

	return out
}

// dirFill handles .fill count, size, value — rejecting any
// size other than 1, 2, or 4 per spec.md §4.4.
func (p *Parser) dirFill(pos Pos) error {
	count, ok := p.parseAbsExpr(pos, ".fill")
	if !ok {
		return nil
	}

	if !p.expectComma() {
		return nil
	}

	size, ok := p.parseAbsExpr(pos, ".fill")
	if !ok {
		return nil
	}

	if size != 1 && size != 2 && size != 4 {
		p.errorf(pos, ".fill: size must be 1, 2, or 4, got %d", size)
		return nil
	}

	if !p.expectComma() {
		return nil
	}

	value, ok := p.parseAbsExpr(pos, ".fill")
	if !ok {
		return nil
	}

	for i := int64(0); i < count; i++ {
		p.str.EmitValue(MCValue{Constant: value}, int(size))
	}

	return nil
}

func (p *Parser) dirOrg(pos Pos) error {
	e, err := p.parseExpr(0)
	if err != nil {
		return err
	}

	off, ok := EvaluateRelocatable(e)
	if !ok {
		p.errorf(pos, ".org: could not evaluate offset")
		return nil
	}

	fill := int64(0)

	if p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}

		v, ok := p.parseAbsExpr(pos, ".org")
		if !ok {
			return nil
		}

		fill = v
	}

	p.str.EmitValueToOffset(off, fill)

	return nil
}

// dirSymbolAttrList handles the .globl/.weak/.hidden/... family: each
// names zero or more symbols to tag with attr. A symbol already tagged
// with attr is left alone rather than re-emitted, so repeating a
// directive for the same symbol is harmless.
func (p *Parser) dirSymbolAttrList(pos Pos, attr SymbolAttribute) error {
	for {
		name, _, ok := p.expectIdent()
		if !ok {
			return nil
		}

		sym := p.syms.Get(name)
		if sym.RecordAttr(attr) {
			p.str.EmitSymbolAttribute(sym, attr)
		}

		if p.cur.Kind != Comma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *Parser) dirComm(pos Pos, local bool) error {
	name, namePos, ok := p.expectIdent()
	if !ok {
		return nil
	}

	if !p.expectComma() {
		return nil
	}

	size, ok := p.parseAbsExpr(pos, ".comm")
	if !ok {
		return nil
	}

	align := 0

	if p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}

		v, ok := p.parseAbsExpr(pos, ".comm")
		if !ok {
			return nil
		}

		align = int(v)
	}

	sym := p.syms.Get(name)
	sym.DefPos = namePos

	p.str.EmitCommonSymbol(sym, size, align, local)

	return nil
}

func (p *Parser) dirZerofill(pos Pos) error {
	section, _, ok := p.expectIdent()
	if !ok {
		return nil
	}

	if !p.expectComma() {
		return nil
	}

	segName, segPos, ok := p.expectIdent()
	if !ok {
		return nil
	}

	var sym *Symbol
	var size int64
	var align int

	if p.cur.Kind == Comma {
		if err := p.advance(); err != nil {
			return err
		}

		name, namePos, ok := p.expectIdent()
		if !ok {
			return nil
		}

		sym = p.syms.Get(name)
		sym.DefPos = namePos

		if !p.expectComma() {
			return nil
		}

		v, ok := p.parseAbsExpr(pos, ".zerofill")
		if !ok {
			return nil
		}

		size = v

		if p.cur.Kind == Comma {
			if err := p.advance(); err != nil {
				return err
			}

			v, ok := p.parseAbsExpr(pos, ".zerofill")
			if !ok {
				return nil
			}

			align = int(v)
		}
	} else {
		// bare ".zerofill section, segname" is the symbol-less form:
		// it emits with a nil symbol, size 0 and alignment 0. segPos
		// is unused.
		_ = segPos
	}

	p.str.EmitZerofill(section+","+segName, sym, size, align)

	return nil
}

func (p *Parser) dirInclude(pos Pos) error {
	if p.cur.Kind != String {
		p.errorf(pos, ".include: expected a string literal")
		return nil
	}

	name := p.cur.Text

	if err := p.advance(); err != nil {
		return err
	}

	data, err := p.includer(name)
	if err != nil {
		p.errorf(pos, ".include: %v", err)
		return nil
	}

	// p.cur already holds the token following the string operand, read
	// from the including file before this push — normally its
	// EndOfStatement. Pushing the new frame here, without touching cur,
	// means the *next* advance() (driven by the caller's
	// expectEndOfStatement) is what starts pulling tokens from the
	// included file, splicing it in exactly at this statement boundary.
	p.lex.PushFile(name, data)

	return nil
}

func (p *Parser) dirAbort(pos Pos) error {
	msg := "assembly aborted"

	if p.cur.Kind == String {
		msg = p.cur.Text
		if err := p.advance(); err != nil {
			return err
		}
	}

	p.errorf(pos, ".abort: %s", msg)

	return nil
}
