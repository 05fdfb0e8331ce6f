package fetch

import "errors"

// ErrNoProviderSucceeded is wrapped by the error Download returns when every
// provider in an entry's providers list failed (to fetch or to verify).
var ErrNoProviderSucceeded = errors.New("no provider succeeded")
