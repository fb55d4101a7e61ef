package slurm

import (
	"context"
	"strconv"
	"strings"
)

// Job is a job known to the scheduler. Jobs are never created here, only
// listed and acted upon.
type Job struct {
	JobID       string `slurm:"job_id,primarykey"`
	ArrayJobID  string `slurm:"array_job_id,readonly"`
	ArrayTaskID string `slurm:"array_task_id,readonly"`
	JobName     string `slurm:"job_name,readonly"`
	JobState    string `slurm:"job_state,readonly"`
	Reason      string `slurm:"reason,readonly"`
	RunTime     string `slurm:"run_time,readonly"`
	TimeLimit   string `slurm:"time_limit"`
	TRES        string `slurm:"tres,readonly"`
	UserID      string `slurm:"user_id,readonly"`
	GroupID     string `slurm:"group_id,readonly"`
	NodeList    string `slurm:"node_list,readonly"`
	StdOut      string `slurm:"std_out,readonly"`
}

func (*Job) ObjectType() string     { return "Job" }
func (*Job) QueryOptions() []string { return nil }

// CPUs returns the allocated cpu count from TRES.
func (j *Job) CPUs() string {
	v, _ := GresValue(j.TRES, "cpu")
	return v
}

// Memory returns the allocated memory from TRES, e.g. "16G".
func (j *Job) Memory() string {
	v, _ := GresValue(j.TRES, "mem")
	return v
}

// GPUs returns the allocated gpu count from TRES.
func (j *Job) GPUs() string {
	v, _ := GresValue(j.TRES, "gres/gpu")
	return v
}

// Username strips the numeric id the control tool appends to the user,
// "alice(1000)" becoming "alice".
func (j *Job) Username() string {
	name, _, _ := strings.Cut(j.UserID, "(")
	return name
}

// GroupName strips the numeric id from GroupID.
func (j *Job) GroupName() string {
	name, _, _ := strings.Cut(j.GroupID, "(")
	return name
}

// IDWithArray returns "<array job>_<task>" for array jobs and the job id
// otherwise.
func (j *Job) IDWithArray() string {
	if j.ArrayJobID == "" || j.ArrayTaskID == "" {
		return j.JobID
	}
	return j.ArrayJobID + "_" + j.ArrayTaskID
}

// Jobs acts on scheduler jobs.
type Jobs struct {
	*ControlRepository[Job, *Job]
	users    *Users
	accounts *Accounts
}

// Cancel asks the scheduler to cancel job.
func (r *Jobs) Cancel(ctx context.Context, job *Job) error {
	return r.controller.Signal(ctx, job.JobID, "")
}

// Kill cancels job with SIGKILL.
func (r *Jobs) Kill(ctx context.Context, job *Job) error {
	return r.controller.Signal(ctx, job.JobID, "KILL")
}

// Hold keeps a pending job from starting.
func (r *Jobs) Hold(ctx context.Context, job *Job) error {
	return r.controller.Action(ctx, job.ObjectType(), "hold", job.JobID)
}

// Release undoes Hold.
func (r *Jobs) Release(ctx context.Context, job *Job) error {
	return r.controller.Action(ctx, job.ObjectType(), "release", job.JobID)
}

// SetCPUs changes the cpu count of a pending job.
func (r *Jobs) SetCPUs(ctx context.Context, job *Job, n int) error {
	if n < 0 {
		return &ValidationError{Field: "cpus", Reason: "must not be negative"}
	}
	if err := r.update(ctx, job.JobID, Fields{"num_cpus": strconv.Itoa(n)}); err != nil {
		return err
	}
	return r.Refresh(ctx, job)
}

// SetGPUs changes the per node gpu count of a pending job.
func (r *Jobs) SetGPUs(ctx context.Context, job *Job, n int) error {
	if n < 0 {
		return &ValidationError{Field: "gpus", Reason: "must not be negative"}
	}
	if err := r.update(ctx, job.JobID, Fields{"tres_per_node": "gres/gpu:" + strconv.Itoa(n)}); err != nil {
		return err
	}
	return r.Refresh(ctx, job)
}

// SetTimeLimit changes the time limit of job.
func (r *Jobs) SetTimeLimit(ctx context.Context, job *Job, limit string) error {
	if limit == "" {
		return &ValidationError{Field: "time_limit", Reason: "must not be empty"}
	}
	job.TimeLimit = limit
	return r.Save(ctx, job)
}

// User returns the accounting association of the job's owner with its
// group's account.
func (r *Jobs) User(ctx context.Context, job *Job) (*User, error) {
	return r.users.Get(ctx, Fields{"user": job.Username(), "account": job.GroupName()})
}

// Account returns the account named after the job's group.
func (r *Jobs) Account(ctx context.Context, job *Job) (*Account, error) {
	return r.accounts.Get(ctx, Fields{"account": job.GroupName()})
}
