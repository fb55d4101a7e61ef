package slurm

import "context"

// Controller speaks the control tool's protocol for live cluster state, and
// the job cancel tool that goes with it.
type Controller struct {
	invoker *Invoker
}

// NewController returns a Controller running through invoker.
func NewController(invoker *Invoker) *Controller {
	return &Controller{invoker: invoker}
}

func (c *Controller) run(ctx context.Context, tool Tool, objectType string, args ...string) (string, error) {
	code, output, err := c.invoker.Run(ctx, tool, args...)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", &ControlError{ObjectType: objectType, Output: output}
	}
	return output, nil
}

// Show lists objectType records, optionally limited to the one named by
// filter. Only the requested fields are kept from each record.
func (c *Controller) Show(ctx context.Context, objectType, filter string, options, fields []string) ([]Fields, error) {
	args := []string{"show", objectType}
	if filter != "" {
		args = append(args, filter)
	}
	args = append(args, options...)
	args = append(args, "--oneline", "--detail")

	output, err := c.run(ctx, Scontrol, objectType, args...)
	if err != nil {
		return nil, err
	}
	return ParseKeyValueRows(output, fields), nil
}

// Update sets updates on the objectType record named by filter.
func (c *Controller) Update(ctx context.Context, objectType, filter string, updates Fields) error {
	args := []string{"update", objectType, filter}
	args = append(args, updates.external()...)
	_, err := c.run(ctx, Scontrol, objectType, args...)
	return err
}

// Action runs a control tool verb that takes positional arguments, such as
// "hold", "release" or "reboot".
func (c *Controller) Action(ctx context.Context, objectType, verb string, args ...string) error {
	_, err := c.run(ctx, Scontrol, objectType, append([]string{verb}, args...)...)
	return err
}

// Signal cancels a job, delivering signal when it is not empty.
func (c *Controller) Signal(ctx context.Context, jobID, signal string) error {
	var args []string
	if signal != "" {
		args = append(args, "--signal="+signal)
	}
	args = append(args, jobID)
	_, err := c.run(ctx, Scancel, "Job", args...)
	return err
}
