package linkmtime

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ngicks/linkmtime/errdef"
)

type chainErr struct {
	Base    error
	Message string
}

func (e *chainErr) Error() string {
	return e.Message
}

func (e *chainErr) Unwrap() error {
	return e.Base
}

// ErrLinkChainTooDeep is returned when a chain of symbolic links does not reach
// a non-link entry within the hop bound.
// It also satisfies errors.Is(err, syscall.ELOOP).
var ErrLinkChainTooDeep error = &chainErr{Base: errdef.ELOOP, Message: "link chain too deep"}

// ChainError records a failure while following a link chain.
type ChainError struct {
	// Path is the path Resolve was called with.
	Path string
	// Last is the entry being examined when the failure occurred.
	Last string
	// Hops is the number of links followed before the failure.
	Hops int
	Err  error
}

func (e *ChainError) Error() string {
	if e.Last == "" || e.Last == e.Path {
		return fmt.Sprintf("resolve %s: after %d hop(s): %v", e.Path, e.Hops, e.Err)
	}
	return fmt.Sprintf("resolve %s: after %d hop(s) at %s: %v", e.Path, e.Hops, e.Last, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Kind classifies resolution failures.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindLinkChainTooDeep
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindLinkChainTooDeep:
		return "link_chain_too_deep"
	default:
		return "other"
	}
}

// KindOf reports the Kind of err.
// nil is reported as KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrLinkChainTooDeep):
		return KindLinkChainTooDeep
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	default:
		return KindOther
	}
}
