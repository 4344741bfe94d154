// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"fmt"
	"os/user"
	"strconv"
	"syscall"
)

// Ownership is a resolved uid/gid pair. The recipe resolves owner and group
// names once, at build time, so a missing account fails the run before any
// host mutation.
type Ownership struct {
	UID int
	GID int
}

// LookupOwnership resolves an owner and group name to numeric IDs. Numeric
// strings are accepted verbatim, matching chown(1) semantics.
func LookupOwnership(owner, group string) (Ownership, error) {
	uid, err := lookupUID(owner)
	if err != nil {
		return Ownership{}, err
	}
	gid, err := lookupGID(group)
	if err != nil {
		return Ownership{}, err
	}
	return Ownership{UID: uid, GID: gid}, nil
}

// CurrentOwnership returns the ownership of the running process, used by
// tests that cannot chown to foreign accounts.
func CurrentOwnership() Ownership {
	return Ownership{UID: syscall.Getuid(), GID: syscall.Getgid()}
}

// owns reports whether the stat result matches the desired ownership.
func (o Ownership) owns(st *syscall.Stat_t) bool {
	return int(st.Uid) == o.UID && int(st.Gid) == o.GID
}

func lookupUID(owner string) (int, error) {
	if n, err := strconv.Atoi(owner); err == nil {
		return n, nil
	}
	u, err := user.Lookup(owner)
	if err != nil {
		return 0, fmt.Errorf("resolving owner %q: %w", owner, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, fmt.Errorf("non-numeric uid for %q: %w", owner, err)
	}
	return uid, nil
}

func lookupGID(group string) (int, error) {
	if n, err := strconv.Atoi(group); err == nil {
		return n, nil
	}
	g, err := user.LookupGroup(group)
	if err != nil {
		return 0, fmt.Errorf("resolving group %q: %w", group, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, fmt.Errorf("non-numeric gid for %q: %w", group, err)
	}
	return gid, nil
}
