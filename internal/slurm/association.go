package slurm

import "fmt"

// Association is one node of the accounting hierarchy: a (cluster, account,
// user) triple with its resource limits. It is embedded by Account and User,
// which add their own identifying fields.
//
// Limits are kept as the tools print them. The combined resource limit
// GrpTRES holds the per-resource ceilings read by MaxCPUs and MaxGPUs.
type Association struct {
	ID         string `slurm:"id,readonly"`
	ParentID   string `slurm:"parent_id,readonly"`
	ParentName string `slurm:"parent_name,readonly"`
	Cluster    string `slurm:"cluster,readonly"`
	Partition  string `slurm:"partition"`

	GrpTRESMins           string `slurm:"grp_tres_mins"`
	GrpTRESRunMins        string `slurm:"grp_tres_run_mins"`
	GrpTRES               string `slurm:"grp_tres"`
	GrpJobs               string `slurm:"grp_jobs"`
	GrpSubmitJobs         string `slurm:"grp_submit_jobs"`
	GrpWall               string `slurm:"grp_wall"`
	MaxTRESMinsPerJob     string `slurm:"max_tres_mins_per_job"`
	MaxTRESPerJob         string `slurm:"max_tres_per_job"`
	MaxTRESPerNode        string `slurm:"max_tres_per_node"`
	MaxWallDurationPerJob string `slurm:"max_wall_duration_per_job"`
	Fairshare             string `slurm:"fairshare"`
	MaxJobs               string `slurm:"max_jobs"`
	MaxSubmitJobs         string `slurm:"max_submit_jobs"`
	QOS                   string `slurm:"qos"`

	// NestingLevel is the depth at which the association appeared in a tree
	// listing; roots are at 0.
	NestingLevel int `slurm:"nesting_level,synthetic"`

	parent   Entry
	children []Entry
}

// Entry is an Account or a User inside a reconstructed hierarchy.
type Entry interface {
	Record
	// Base returns the shared association fields and tree links.
	Base() *Association
	// AccountName is the account the entry belongs to, or is.
	AccountName() string
	String() string
}

// Base returns a itself; it lets Account and User satisfy Entry.
func (a *Association) Base() *Association { return a }

// Parent returns the entry this association was listed under, or nil for a
// root.
func (a *Association) Parent() Entry { return a.parent }

// Children returns the entries listed directly under this association, in
// listing order.
func (a *Association) Children() []Entry { return a.children }

// MaxCPUs returns the cpu ceiling from GrpTRES, or "" when unlimited.
func (a *Association) MaxCPUs() string {
	v, _ := GresValue(a.GrpTRES, "cpu")
	return v
}

// SetMaxCPUs stores a cpu ceiling in GrpTRES; "" clears it.
func (a *Association) SetMaxCPUs(v string) {
	a.GrpTRES = UpdateGresValue(a.GrpTRES, "cpu", v)
}

// MaxGPUs returns the gpu ceiling from GrpTRES, or "" when unlimited.
func (a *Association) MaxGPUs() string {
	v, _ := GresValue(a.GrpTRES, "gres/gpu")
	return v
}

// SetMaxGPUs stores a gpu ceiling in GrpTRES; "" clears it.
func (a *Association) SetMaxGPUs(v string) {
	a.GrpTRES = UpdateGresValue(a.GrpTRES, "gres/gpu", v)
}

// ---------------------------------------------------------------------------
// Account
// ---------------------------------------------------------------------------

// Account is an association without a user.
type Account struct {
	Association
	Account string `slurm:"account,primarykey"`
	User    string `slurm:"user,readonly"`

	// ParentAccount is only sent when moving the account; it is never
	// read back.
	ParentAccount string `slurm:"parent,writeonly"`
}

func (*Account) ObjectType() string     { return "Account" }
func (*Account) QueryOptions() []string { return []string{"withassoc"} }
func (*Account) writable()              {}

func (a *Account) AccountName() string { return a.Account }
func (a *Account) String() string      { return fmt.Sprintf("Account %s", a.Account) }

// ---------------------------------------------------------------------------
// User
// ---------------------------------------------------------------------------

// User is the association of a user with one account.
type User struct {
	Association
	User    string `slurm:"user,primarykey"`
	Account string `slurm:"account,primarykey"`

	// DefaultAccount is only sent when moving the user to another account.
	DefaultAccount string `slurm:"default_account,writeonly"`

	finder *HomeFinder
	home   *string
}

func (*User) ObjectType() string     { return "User" }
func (*User) QueryOptions() []string { return []string{"withassoc"} }
func (*User) writable()              {}

func (u *User) AccountName() string { return u.Account }
func (u *User) String() string      { return fmt.Sprintf("User %s in %s", u.User, u.Account) }

// HomeDirectory returns the user's home directory, or "" if none of the
// configured locations exist. The result is computed on first use and kept
// for the lifetime of the value.
func (u *User) HomeDirectory() string {
	if u.home == nil {
		finder := u.finder
		if finder == nil {
			finder = DefaultHomeFinder
		}
		home := finder.Find(u.User)
		u.home = &home
	}
	return *u.home
}

// associationRow is the column set of a mixed Account/User tree listing.
type associationRow struct {
	Association
	Account string `slurm:"account,primarykey"`
	User    string `slurm:"user,readonly"`
}

func (*associationRow) ObjectType() string     { return "Association" }
func (*associationRow) QueryOptions() []string { return []string{"tree"} }

var (
	accountSchema     = MustRegister[Account]()
	userSchema        = MustRegister[User]()
	associationSchema = MustRegister[associationRow]()
)
