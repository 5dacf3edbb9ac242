package session

import (
	"errors"
	"fmt"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/router"
)

// ErrEmptyQuery is returned when the submitted query is empty or blank.
// The conversation memory and the route stats are left untouched.
var ErrEmptyQuery = errors.New("query is empty")

// StrategyError reports a failed answer strategy.
type StrategyError struct {
	Route router.Route
	Err   error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s strategy failed: %v", e.Route, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// FatalError reports that the direct strategy failed, leaving no way to
// produce an answer for this turn. Nothing is appended to memory.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("no strategy could answer: %v", e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
