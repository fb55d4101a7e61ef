package slurm

import (
	"fmt"
	"strconv"
)

// Limit reads one resource ceiling of an association, "" meaning unlimited.
type Limit func(*Association) string

var (
	CPULimit Limit = (*Association).MaxCPUs
	GPULimit Limit = (*Association).MaxGPUs
)

// Bottleneck returns the entry on the path from e to its root with the
// lowest value for limit. e itself is returned when neither it nor any
// ancestor sets the limit.
func Bottleneck(e Entry, limit Limit) Entry {
	lowest, lowestValue := e, limit(e.Base())
	for p := e.Base().Parent(); p != nil; p = p.Base().Parent() {
		v := limit(p.Base())
		if v == "" {
			continue
		}
		if lowestValue == "" || atoi(v) < atoi(lowestValue) {
			lowest, lowestValue = p, v
		}
	}
	return lowest
}

// BottleneckHint describes how ancestors constrain limit on e. hint is set
// when e has its own value: either it is shadowed by a lower ancestor, or it
// shares an ancestor's pool. placeholder describes an inherited limit when e
// has none, and is "∞" when nothing limits e at all.
func BottleneckHint(e Entry, limit Limit) (hint, placeholder string) {
	placeholder = "∞"
	own := limit(e.Base())
	b := Bottleneck(e, limit)
	if b == e {
		return "", placeholder
	}
	shared := limit(b.Base())
	switch {
	case shared != "" && own != "":
		if atoi(shared) < atoi(own) {
			hint = fmt.Sprintf("shadowed by %s(%s)", b.AccountName(), shared)
		} else {
			hint = fmt.Sprintf("%s (max %s shared in <%s>)", own, shared, b.AccountName())
		}
	case shared != "":
		placeholder = fmt.Sprintf("%s shared in <%s>", shared, b.AccountName())
	}
	return hint, placeholder
}

// atoi treats unparsable limits as unlimited.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return int(^uint(0) >> 1)
	}
	return n
}
