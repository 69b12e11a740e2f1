package clinic

import "errors"

var errInvalidHours = errors.New("clinic: closing time must be after opening time")
