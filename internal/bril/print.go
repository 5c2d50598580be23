package bril

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format renders an instruction in Bril text form, e.g. "sum: int = add a b;".
func Format(in Instr) string {
	var sb strings.Builder
	if in.HasDest() {
		sb.WriteString(in.Dest)
		if in.HasType() {
			sb.WriteString(": ")
			sb.WriteString(in.Type.String())
		}
		sb.WriteString(" = ")
	}
	sb.WriteString(in.Op.String())
	for _, a := range in.Args {
		sb.WriteByte(' ')
		sb.WriteString(a)
	}
	if in.HasValue {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatUint(uint64(in.Value), 10))
	}
	sb.WriteByte(';')
	return sb.String()
}

// FormatBlock renders one instruction per line.
func FormatBlock(b Block) string {
	var sb strings.Builder
	for _, in := range b {
		sb.WriteString(Format(in))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DumpProgram writes a human-readable representation of p.
func DumpProgram(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}
	for i, fn := range p.Functions {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "@%s {\n", fn.Name); err != nil {
			return err
		}
		for _, in := range fn.Instrs {
			if _, err := fmt.Fprintf(w, "  %s\n", Format(in)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "}"); err != nil {
			return err
		}
	}
	return nil
}
