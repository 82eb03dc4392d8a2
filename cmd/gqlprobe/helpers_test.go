package main

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/fabriq-labs/gqlprobe/internal/graphql/graphqltest"
	"github.com/fabriq-labs/gqlprobe/internal/utils/errutils"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVarValue(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want any
	}{
		{"octocat", "octocat"},
		{"10", float64(10)},
		{"1.5", 1.5},
		{"true", true},
		{"null", nil},
		{`{"a":1}`, map[string]any{"a": float64(1)}},
		{`[1,2]`, []any{float64(1), float64(2)}},
		{"{not json", "{not json"},
		{"", ""},
	} {
		assert.Equal(t, tt.want, parseVarValue(tt.raw), "parseVarValue(%q)", tt.raw)
	}
}

func TestQueryFlags_Variables(t *testing.T) {
	f := queryFlags{
		Variables: `{"owner": "octocat", "first": 5}`,
		Vars:      []string{"name=Hello-World", "first=10"},
	}
	vars, err := f.variables()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"owner": "octocat",
		"name":  "Hello-World",
		"first": float64(10),
	}, vars)

	vars, err = (&queryFlags{Variables: "null", Vars: []string{"a=1"}}).variables()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, vars)

	_, err = (&queryFlags{Variables: "[1]"}).variables()
	assert.Error(t, err)
	_, err = (&queryFlags{Vars: []string{"novalue"}}).variables()
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Ocp-Apim-Subscription-Key=abc", "X-Trace: 1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Ocp-Apim-Subscription-Key": "abc",
		"X-Trace":                   "1",
	}, headers)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, headers)

	_, err = parseHeaders([]string{"=abc"})
	assert.Error(t, err)
}

func TestQueryCommand(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GQLPROBE_TEST_TOKEN", "ghp_test")
	server := graphqltest.RunServer(t, graphqltest.Data(map[string]any{
		"viewer": map[string]any{"login": "octocat"},
	}))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("query { viewer { login } }"))
	rootCmd.SetArgs([]string{
		"query", "--compact",
		"--endpoint", server.URL,
		"--token-env", "GQLPROBE_TEST_TOKEN",
		"--header", "X-Trace=abc",
		"--var", "n=1",
		"-f", "-",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, `{"viewer":{"login":"octocat"}}`+"\n", out.String())
	reqs := server.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "query { viewer { login } }", reqs[0].Query)
	assert.Equal(t, map[string]any{"n": float64(1)}, reqs[0].Variables)
	assert.Equal(t, "Bearer ghp_test", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "abc", reqs[0].Header.Get("X-Trace"))
}

func TestAuthStatusCommand_InvalidToken(t *testing.T) {
	color.NoColor = true
	chdir(t, t.TempDir())
	server := graphqltest.RunServer(t, graphqltest.Raw(http.StatusUnauthorized, `{"message":"Bad credentials"}`))
	t.Setenv("GQLPROBE_GITHUB_TOKEN", "ghp_expired")
	t.Setenv("GITHUB_GRAPHQL_API_URL", server.URL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"auth", "status"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()

	exitErr, ok := errutils.As[errExitSilently](err)
	require.True(t, ok, "expected a silent exit, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode)
	assert.Contains(t, out.String(), "The GitHub token is invalid or expired.")
	assert.Contains(t, out.String(), "Then run gqlprobe auth status again.")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
