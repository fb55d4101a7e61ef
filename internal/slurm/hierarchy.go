package slurm

import (
	"fmt"
	"strings"
)

// BuildHierarchy turns the rows of a tree listing into Accounts and Users
// linked to their parents and children.
//
// In a tree listing every account name is prefixed by one space per level of
// depth, and each parent is listed right before its first child. A row is a
// User when it names a user and an Account otherwise. The returned slice
// keeps listing order; walk Children from the roots to get the tree.
func BuildHierarchy(rows []Fields) ([]Entry, error) {
	entries := make([]Entry, 0, len(rows))
	// lastAt[n] is the most recent entry seen at nesting level n.
	var lastAt []Entry

	for i, row := range rows {
		raw := row["account"]
		name := strings.TrimLeft(raw, " ")
		level := len(raw) - len(name)
		name = strings.TrimSpace(name)

		var parent Entry
		if level > 0 {
			if level > len(lastAt) {
				return nil, fmt.Errorf("%w: row %d (%q) at level %d follows a row at level %d",
					ErrHierarchy, i, name, level, len(lastAt)-1)
			}
			parent = lastAt[level-1]
		}

		var entry Entry
		if row["user"] == "" {
			account := &Account{}
			accountSchema.Decode(account, row)
			account.Account = name
			entry = account
		} else {
			user := &User{}
			userSchema.Decode(user, row)
			user.Account = name
			entry = user
		}

		base := entry.Base()
		base.NestingLevel = level
		base.parent = parent
		if parent != nil {
			pb := parent.Base()
			pb.children = append(pb.children, entry)
		}

		lastAt = append(lastAt[:level], entry)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Roots returns the entries without a parent, in listing order.
func Roots(entries []Entry) []Entry {
	var roots []Entry
	for _, e := range entries {
		if e.Base().Parent() == nil {
			roots = append(roots, e)
		}
	}
	return roots
}

// NearestAccount walks up from e and returns the first Account, e itself
// included. It returns nil when e has no Account ancestor.
func NearestAccount(e Entry) *Account {
	for e != nil {
		if account, ok := e.(*Account); ok {
			return account
		}
		e = e.Base().Parent()
	}
	return nil
}
