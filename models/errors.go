package models

import "errors"

// ErrDuplicateEmail is returned by storage when the users.email unique constraint rejects an insert.
var ErrDuplicateEmail = errors.New("email already registered")
