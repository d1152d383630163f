/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package privilege

import (
	"fmt"
)

// UnknownPrivilegeError is returned when a keyword matches no privilege
// or alias after case folding.
type UnknownPrivilegeError struct {
	Name string
}

func (e *UnknownPrivilegeError) Error() string {
	return fmt.Sprintf("unknown.privilege[%s]", e.Name)
}

// NotGrantableError is returned when privileges are requested at a level
// finer than any of them may be granted at.
type NotGrantableError struct {
	Keywords string
	Level    Level
}

func (e *NotGrantableError) Error() string {
	return fmt.Sprintf("privilege[%s].cannot.be.granted.on.the.%s.level", e.Keywords, e.Level)
}
