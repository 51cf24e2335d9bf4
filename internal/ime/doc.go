// Package ime turns key events from an input method framework into calls
// on a phonetic composition engine.
//
// # Architecture Overview
//
// One Controller serves one input context. It owns exactly one
// engine.Client and never shares it:
//
//	Key Event → Router → engine.Client → Outcome
//	                                        ↓
//	              View (preedit, aux text, candidate page) → host
//
// The Router maps a key to at most one engine call using a fixed
// precedence table and classifies the result with engine.Classify. Keys
// the Router leaves alone go through a post-filter that claims keys while
// a candidate list is open and flushes pending text before a key that
// types a character.
//
// # Session Model
//
// A Controller is active between focus gain and focus loss. On focus loss
// or input method switch the SwitchBehavior decides whether pending text
// is dropped, committed as shown, or committed after the engine picks its
// default candidates. Configuration changes reach the engine through a
// single ApplySettings call derived from SessionConfig.
//
// # Frameworks
//
//	┌──────────┬─────────────────────────────────────────────┐
//	│ Platform │ Framework                                   │
//	├──────────┼─────────────────────────────────────────────┤
//	│ Linux    │ IBus - factory plus one engine per context  │
//	│ other    │ not supported                               │
//	└──────────┴─────────────────────────────────────────────┘
//
// Controllers are not safe for concurrent use. The IBus frontend holds a
// mutex per input context because D-Bus calls arrive on several
// goroutines.
package ime
