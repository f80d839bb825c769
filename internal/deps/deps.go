package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external program the studio shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional tools only matter for some configurations.
	Optional bool
}

// Status is a Requirement plus what PATH lookup found.
type Status struct {
	Requirement
	Available bool
	// Detail explains a missing tool, or carries its version once probed.
	Detail string
}

// CheckBinaries resolves each requirement's command on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		statuses[i] = lookup(req)
	}
	return statuses
}

func lookup(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(req.Command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	return status
}
