// Package output renders GraphQL results to the terminal.
package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"emperror.dev/errors"
	"github.com/itchyny/gojq"
	"github.com/mattn/go-isatty"
)

const indent = "    "

type Options struct {
	// Pretty indents the output.
	Pretty bool
	// JQ is an optional jq program applied to the data before printing.
	// Each value it produces is printed on its own.
	JQ string
}

// PrettyDefault reports whether output to f should be indented by default,
// i.e. whether a human is looking at it.
func PrettyDefault(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Write prints data (a JSON document) to w.
func Write(w io.Writer, data json.RawMessage, opts Options) error {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	if opts.JQ == "" {
		return writeValue(w, data, opts.Pretty)
	}

	query, err := gojq.Parse(opts.JQ)
	if err != nil {
		return errors.Wrap(err, "invalid jq filter")
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return errors.Wrap(err, "failed to decode data for jq")
	}

	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				return nil
			}
			return errors.Wrap(err, "jq filter failed")
		}
		bs, err := gojq.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "failed to encode jq result")
		}
		if err := writeValue(w, bs, opts.Pretty); err != nil {
			return err
		}
	}
}

func writeValue(w io.Writer, bs []byte, pretty bool) error {
	var buf bytes.Buffer
	var err error
	if pretty {
		err = json.Indent(&buf, bs, "", indent)
	} else {
		err = json.Compact(&buf, bs)
	}
	if err != nil {
		return errors.Wrap(err, "failed to format JSON")
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
