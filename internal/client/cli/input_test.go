package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb\n\n\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGetMultiline_EOFWithoutBlankLine(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("one\ntwo"))
	got, err := GetMultiline(in, "Remark", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", got)
}

func stubTerminal(t *testing.T, tty bool, pw []byte, err error) {
	t.Helper()
	origTTY, origPW := isTerminal, readPassword
	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) { return pw, err }
	t.Cleanup(func() { isTerminal, readPassword = origTTY, origPW })
}

func TestGetSecret_Terminal(t *testing.T) {
	stubTerminal(t, true, []byte("tok"), nil)

	var out bytes.Buffer
	got, err := GetSecret(bufio.NewReader(strings.NewReader("")), "Token: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), got)
	assert.Equal(t, "Token: \n", out.String())
}

func TestGetSecret_TerminalError(t *testing.T) {
	stubTerminal(t, true, nil, errors.New("boom"))

	_, err := GetSecret(bufio.NewReader(strings.NewReader("")), "Token: ", &bytes.Buffer{})
	require.Error(t, err)
}

func TestGetSecret_PipedInput(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not be called"))

	got, err := GetSecret(bufio.NewReader(strings.NewReader("  abc.def  \n")), "Token: ", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []byte("abc.def"), got)
}

func TestParseKV(t *testing.T) {
	kv, rest := parseKV([]string{"TC=00:01:00", "verb=pause", "north", "face", "=x"})
	assert.Equal(t, map[string]string{"tc": "00:01:00", "verb": "pause"}, kv)
	assert.Equal(t, []string{"north", "face", "=x"}, rest)
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	wipe(b)
	assert.Equal(t, make([]byte, 6), b)
	wipe(nil)
}
