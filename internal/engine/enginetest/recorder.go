// Package enginetest provides engine.Client doubles for tests.
package enginetest

import (
	"fmt"

	"chewingd/internal/engine"
)

// Call is one recorded mutating call.
type Call struct {
	Method string
	Arg    string
}

func (c Call) String() string {
	if c.Arg == "" {
		return c.Method
	}
	return c.Method + "(" + c.Arg + ")"
}

// Recorder wraps a Client and records every call that can change engine
// state. Queries are forwarded without being recorded.
type Recorder struct {
	engine.Client
	Calls []Call
}

// NewRecorder wraps c.
func NewRecorder(c engine.Client) *Recorder {
	return &Recorder{Client: c}
}

func (r *Recorder) record(method, arg string) {
	r.Calls = append(r.Calls, Call{Method: method, Arg: arg})
}

func (r *Recorder) HandleDefault(code rune) {
	r.record("HandleDefault", string(code))
	r.Client.HandleDefault(code)
}

func (r *Recorder) HandleAction(a engine.Action) {
	r.record("HandleAction", a.String())
	r.Client.HandleAction(a)
}

func (r *Recorder) HandleCtrlNum(digit rune) {
	r.record("HandleCtrlNum", string(digit))
	r.Client.HandleCtrlNum(digit)
}

func (r *Recorder) Reset() {
	r.record("Reset", "")
	r.Client.Reset()
}

func (r *Recorder) ApplySettings(s engine.Settings) {
	r.record("ApplySettings", fmt.Sprintf("%s/%d", s.Layout, s.PageSize))
	r.Client.ApplySettings(s)
}

// Count returns how many recorded calls used method. An empty method
// counts every call.
func (r *Recorder) Count(method string) int {
	n := 0
	for _, c := range r.Calls {
		if method == "" || c.Method == method {
			n++
		}
	}
	return n
}

// Clear forgets every recorded call.
func (r *Recorder) Clear() {
	r.Calls = nil
}
