package main

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"nikand.dev/go/cli"

	"github.com/slowlang/isel/asm"
	"github.com/slowlang/isel/ir"
	"github.com/slowlang/isel/target/arm64demo"
)

func main() {
	asmCmd := &cli.Command{
		Name:   "asm",
		Action: asmAct,
		Args:   cli.Args{},
	}

	matchCmd := &cli.Command{
		Name:   "match",
		Action: matchAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "isel",
		Description: "isel drives the instruction-selection matcher and assembly parser over test input",
		Commands: []*cli.Command{
			asmCmd,
			matchCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// asmAct parses each given file and renders the result as ARM64-flavored
// assembly text, the way compileAct in the teacher's cmd drives a parse
// pipeline over each command-line argument.
func asmAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		b, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		str := arm64demo.NewTextStreamer()

		p := asm.New(str)
		p.AddFile(ctx, a, b)

		hadErr, err := p.Run(ctx)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		for _, d := range p.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.String())
		}

		if hadErr {
			return errors.New("%v: assembly had errors", a)
		}

		fmt.Print(str.String())
	}

	return nil
}

// matchAct runs a small built-in graph (x + 5) through arm64demo's
// matcher table and prints the selected instruction, demonstrating the
// matcher/asm pipeline without requiring an on-disk IR format.
func matchAct(c *cli.Command) (err error) {
	g := ir.New()

	x := g.Add(ir.Node{Opcode: arm64demo.OpLeaf, Types: []ir.ValueType{ir.I64}})
	five := g.Add(ir.Node{Opcode: ir.OpConstant, Const: 5, Types: []ir.ValueType{ir.I64}})
	add := g.Add(ir.Node{Opcode: arm64demo.OpAdd, Operands: []ir.Index{x, five}, Types: []ir.ValueType{ir.I64}})

	str := arm64demo.NewTextStreamer()

	if err := arm64demo.SelectAndEmit(g, add, str); err != nil {
		return errors.Wrap(err, "select")
	}

	fmt.Print(str.String())

	return nil
}
