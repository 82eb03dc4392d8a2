package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/output"
	"github.com/spf13/cobra"
)

// queryFlags are shared by every command that sends a user-supplied query.
type queryFlags struct {
	Query     string
	File      string
	Variables string
	Vars      []string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "GraphQL query text")
	cmd.Flags().StringVarP(&f.File, "file", "f", "", "read the GraphQL query from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("query", "file")
	cmd.Flags().StringVar(&f.Variables, "variables", "", "query variables as a JSON object")
	cmd.Flags().StringArrayVar(&f.Vars, "var", nil, "query variable as key=value (repeatable; JSON values are decoded)")
}

// load returns the query text, or fallback if none was given.
func (f *queryFlags) load(cmd *cobra.Command, fallback string) (string, error) {
	switch {
	case f.Query != "":
		return f.Query, nil
	case f.File == "-":
		bs, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "failed to read query from stdin")
		}
		return string(bs), nil
	case f.File != "":
		bs, err := os.ReadFile(f.File)
		if err != nil {
			return "", errors.Wrap(err, "failed to read query file")
		}
		return string(bs), nil
	case fallback != "":
		return fallback, nil
	}
	return "", errors.New("no query given (use --query or --file)")
}

// variables merges --variables and --var into one map.
func (f *queryFlags) variables() (map[string]any, error) {
	vars := map[string]any{}
	if f.Variables != "" {
		if err := json.Unmarshal([]byte(f.Variables), &vars); err != nil {
			return nil, errors.Wrap(err, "--variables must be a JSON object")
		}
		// "null" decodes to a nil map.
		if vars == nil {
			vars = map[string]any{}
		}
	}
	for _, kv := range f.Vars {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --var %q (expected key=value)", kv)
		}
		vars[key] = parseVarValue(raw)
	}
	return vars, nil
}

// parseVarValue decodes numbers, booleans, null, objects and arrays;
// anything else is passed as a string.
func parseVarValue(raw string) any {
	if _, err := strconv.ParseFloat(raw, 64); err == nil || strings.HasPrefix(raw, "{") ||
		strings.HasPrefix(raw, "[") || raw == "true" || raw == "false" || raw == "null" {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

func outputOptions() output.Options {
	pretty := output.PrettyDefault(os.Stdout)
	if rootFlags.Pretty {
		pretty = true
	} else if rootFlags.Compact {
		pretty = false
	}
	return output.Options{Pretty: pretty, JQ: rootFlags.JQ}
}

func writeData(cmd *cobra.Command, data json.RawMessage) error {
	return output.Write(cmd.OutOrStdout(), data, outputOptions())
}
