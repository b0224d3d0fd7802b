package ytdlp

import (
	"context"
	"strings"

	"github.com/handiism/gorlock/internal/process"
)

type fakeOutputter struct {
	result *process.Result
	err    error

	calls [][]string
}

func (f *fakeOutputter) Output(_ context.Context, name string, args ...string) (*process.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result, f.err
}

func (f *fakeOutputter) lastCall() string {
	if len(f.calls) == 0 {
		return ""
	}
	return strings.Join(f.calls[len(f.calls)-1], " ")
}
