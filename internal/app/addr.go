package app

import (
	"fmt"
	"strconv"
)

// ParsePort validates a TCP port argument.
func ParsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q: must be a number between 1 and 65535", s)
	}
	return p, nil
}
