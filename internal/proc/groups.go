package proc

import (
	"fmt"

	"github.com/desertwitch/sysup/internal/syscalls"
)

// Groups returns the supplementary group IDs of the calling process.
func (p *Handler) Groups() ([]uint32, error) {
	opts := p.limits.Apply(syscalls.MustPolicyFor(syscalls.FamilyGroups))

	gids, err := syscalls.QueryUint32s(opts, func(m syscalls.Mode) syscalls.Result[int] {
		return syscalls.Retry(p.limits, func() syscalls.Result[int] {
			return syscalls.FromError(func() (int, error) {
				return p.unixHandler.Getgroups(m.Buffer())
			})
		})
	}).Get()
	if err != nil {
		return nil, fmt.Errorf("(proc-groups) %w", err)
	}

	return gids, nil
}
