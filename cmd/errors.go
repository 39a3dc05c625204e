package cmd

import "errors"

var ErrConfirmationRequired = errors.New("refusing to proceed without --yes-i-know")
