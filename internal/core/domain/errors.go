package domain

import "errors"

var ErrNoCategorySelected = errors.New("select a category first")
var ErrNoThreadSelected = errors.New("select a thread first")
var ErrEmptyCategoryName = errors.New("category name cannot be empty")
var ErrEmptyContent = errors.New("content cannot be empty")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrStaleResponse = errors.New("stale response discarded")
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrRemote marks failures reported by the remote gateway. Wrap it with the
// server-provided message so callers can surface it verbatim:
//
//	fmt.Errorf("%w: %s", domain.ErrRemote, resp.Message)
var ErrRemote = errors.New("remote request failed")
