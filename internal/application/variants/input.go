package variants

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/minorchanges/pkg/errors"
)

// maxLineBytes bounds one input line.
const maxLineBytes = 1 << 20

// Input is one molecule read from a SMILES stream.
type Input struct {
	Index  int
	Line   int
	SMILES string
	Name   string
}

// ReadInputs sends every non-blank, non-comment line of r to fn in order.
// A line holds a SMILES string optionally followed by whitespace and a name;
// unnamed molecules are called "mol<index+1>".  Reading stops at the first
// error returned by fn or when ctx is done.
func ReadInputs(ctx context.Context, r io.Reader, fn func(Input) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	line, index := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		in := Input{Index: index, Line: line}
		in.SMILES, in.Name = splitSMILESLine(text)
		if in.Name == "" {
			in.Name = defaultName(index)
		}
		if err := fn(in); err != nil {
			return err
		}
		index++
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read molecules").WithDetailf("line %d", line+1)
	}
	return nil
}

func defaultName(index int) string { return fmt.Sprintf("mol%d", index+1) }

func splitSMILESLine(text string) (smiles, name string) {
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i+1:])
}

//Personal.AI order the ending
