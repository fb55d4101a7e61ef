package slurm

// QOS is a quality of service definition. It is read-only here.
type QOS struct {
	Name     string `slurm:"name,primarykey"`
	Priority string `slurm:"priority,readonly"`

	GrpTRESMins             string `slurm:"grp_tres_mins,readonly"`
	GrpTRESRunMins          string `slurm:"grp_tres_run_mins,readonly"`
	GrpTRES                 string `slurm:"grp_tres,readonly"`
	GrpJobs                 string `slurm:"grp_jobs,readonly"`
	GrpSubmitJobs           string `slurm:"grp_submit_jobs,readonly"`
	GrpWall                 string `slurm:"grp_wall,readonly"`
	MaxTRESMinsPerJob       string `slurm:"max_tres_mins_per_job,readonly"`
	MaxTRESPerJob           string `slurm:"max_tres_per_job,readonly"`
	MaxTRESPerNode          string `slurm:"max_tres_per_node,readonly"`
	MaxWallDurationPerJob   string `slurm:"max_wall_duration_per_job,readonly"`
	MaxJobsPerAccount       string `slurm:"max_jobs_per_account,readonly"`
	MaxJobsPerUser          string `slurm:"max_jobs_per_user,readonly"`
	MaxSubmitJobsPerAccount string `slurm:"max_submit_jobs_per_account,readonly"`
	MaxSubmitJobsPerUser    string `slurm:"max_submit_jobs_per_user,readonly"`
	MaxTRESPerAccount       string `slurm:"max_tres_per_account,readonly"`
	MaxTRESPerUser          string `slurm:"max_tres_per_user,readonly"`
}

func (*QOS) ObjectType() string     { return "QOS" }
func (*QOS) QueryOptions() []string { return nil }

// MaxGPUsPerUser returns the per-user gpu ceiling, or "" when unlimited.
func (q *QOS) MaxGPUsPerUser() string {
	v, _ := GresValue(q.MaxTRESPerUser, "gres/gpu")
	return v
}
