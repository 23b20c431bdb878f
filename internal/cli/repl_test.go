package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls [][]string
	err   error
}

func (f *fakeExec) Exec(_ context.Context, args []string) error {
	f.calls = append(f.calls, args)
	return f.err
}

func stubPrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesLines(t *testing.T) {
	lines := stubPrintln(t)
	input := strings.NewReader(strings.Join([]string{
		"help",
		"",
		"list --archived go",
		"   sync   ",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(local)" }, bufio.NewScanner(input))

	require.Equal(t, [][]string{{"list", "--archived", "go"}, {"sync"}}, exec.calls, "lines after exit are not read")
	assert.Equal(t, "scraps (local)> ", (*lines)[0])
	assert.Contains(t, (*lines)[1], "Available commands")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := stubPrintln(t)
	input := strings.NewReader("bogus\nquit\n")

	exec := &fakeExec{err: errors.New("unknown command")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Len(t, exec.calls, 1)
	assert.Contains(t, *lines, "error: unknown command")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	stubPrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("sync")))
	assert.Len(t, exec.calls, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("sync\nsync\n")))
	assert.Len(t, exec.calls, 1, "a cancelled context ends the loop after the running command")
}

func TestShell_EndToEnd(t *testing.T) {
	lines := stubPrintln(t)
	d := newDevice(t)
	d.stdin = strings.Join([]string{
		"add hello from the shell",
		"add",
		"list",
		"shell",
		"exit",
	}, "\n")

	out, err := d.run("shell")
	require.NoError(t, err)

	assert.Contains(t, out, "Captured ")
	assert.Contains(t, out, "hello from the shell...")
	assert.Contains(t, *lines, "scraps (local)> ")

	var errs []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "error:") {
			errs = append(errs, l)
		}
	}
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "text is required in the shell")
	assert.Contains(t, errs[1], "unknown command")
}
