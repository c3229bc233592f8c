package chat

import "errors"

// ErrNoAsker indicates that no asker was provided.
var ErrNoAsker = errors.New("asker is required")
