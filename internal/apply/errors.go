package apply

import "errors"

// ErrNoChanges is returned when every requested setting already holds its
// value and force was off. The CLI maps it to exit code 1.
var ErrNoChanges = errors.New("no changes needed")
