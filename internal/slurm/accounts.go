package slurm

import (
	"context"
	"fmt"
)

// Accounts is the repository of accounting tool accounts.
type Accounts struct {
	WritableRepository[Account, *Account]
}

func newAccounts(manager *AccountManager) *Accounts {
	return &Accounts{WritableRepository[Account, *Account]{
		newRepository[Account, *Account](manager, decodeEntries[Account, *Account]),
	}}
}

// SetParent moves account under the account named parent.
func (r *Accounts) SetParent(ctx context.Context, account *Account, parent string, opts ...WriteOption) error {
	filters := Fields{"account": account.Account}
	updates := Fields{"parent": parent}
	if _, err := r.manager.Write(ctx, "modify", account.ObjectType(), updates, filters, opts...); err != nil {
		return err
	}
	account.ParentAccount = parent
	return r.Refresh(ctx, account)
}

// Users is the repository of user associations.
type Users struct {
	WritableRepository[User, *User]
}

func newUsers(manager *AccountManager, finder *HomeFinder) *Users {
	repo := newRepository[User, *User](manager, decodeEntries[User, *User])
	repo.prepare = func(u *User) { u.finder = finder }
	return &Users{WritableRepository[User, *User]{repo}}
}

// SetAccount moves user to account. The tool has no in-place edit for
// this: a new association with the target account is created first and the
// old one is deleted afterwards, so the user is never without an account.
func (r *Users) SetAccount(ctx context.Context, user *User, account string) error {
	oldAccount := user.Account

	moved := *user
	moved.Account = account
	moved.DefaultAccount = account
	updates, filters := r.schema.Split(&moved)
	attrs := updates.Merge(filters)
	added, err := r.manager.Write(ctx, "create", user.ObjectType(), attrs, nil)
	if err != nil {
		return fmt.Errorf("create association of %s with %s: %w", user.User, account, err)
	}
	// Nothing added is fine only if the target association already exists.
	if len(added) == 0 {
		if _, err := r.Get(ctx, filters); err != nil {
			if IsNotFound(err) {
				return &CreateError{ObjectType: user.ObjectType(), Attributes: attrs}
			}
			return err
		}
	}

	_, filters = r.schema.Split(user)
	if _, err := r.manager.Write(ctx, "delete", user.ObjectType(), nil, filters); err != nil {
		return fmt.Errorf("delete association of %s with %s: %w", user.User, oldAccount, err)
	}

	user.Account = account
	user.DefaultAccount = ""
	return r.Refresh(ctx, user)
}

// SetNewUsername renames user. An empty name is rejected without calling the
// tool, which would accept it as a no-op.
func (r *Users) SetNewUsername(ctx context.Context, user *User, name string) error {
	if name == "" {
		return &ValidationError{Field: "user", Reason: "can't set an empty name for a user"}
	}
	filters := Fields{"user": user.User}
	updates := Fields{"new_name": name}
	if _, err := r.manager.Write(ctx, "modify", user.ObjectType(), updates, filters); err != nil {
		return err
	}
	user.User = name
	user.home = nil
	return r.Refresh(ctx, user)
}

// Associations lists the whole accounting hierarchy.
type Associations struct {
	manager *AccountManager
	finder  *HomeFinder
}

// All fetches the tree listing and returns every Account and User in
// listing order, linked to parents and children.
func (r *Associations) All(ctx context.Context) ([]Entry, error) {
	return r.Filter(ctx, nil)
}

// Filter is All restricted by criteria.
func (r *Associations) Filter(ctx context.Context, criteria Fields) ([]Entry, error) {
	zero := &associationRow{}
	rows, err := r.manager.Show(ctx, zero.ObjectType(), zero.QueryOptions(), associationSchema.QueryFields(), criteria)
	if err != nil {
		return nil, err
	}
	entries, err := BuildHierarchy(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if u, ok := e.(*User); ok {
			u.finder = r.finder
		}
	}
	return entries, nil
}
