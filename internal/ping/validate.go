package ping

import (
	"net"
	"strings"

	pwerrors "pingwatch/internal/errors"
)

const maxTargetLength = 253

// ValidateTarget rejects targets that cannot be an IP address or hostname,
// including anything the ping utility would read as an option.
func ValidateTarget(target string) error {
	switch {
	case target == "":
		return pwerrors.New(pwerrors.ErrTarget, "target is empty", "enter an IP address or hostname")
	case len(target) > maxTargetLength:
		return pwerrors.New(pwerrors.ErrTarget, "target is too long", "hostnames are at most 253 characters")
	case strings.HasPrefix(target, "-"):
		return pwerrors.New(pwerrors.ErrTarget, "target must not start with '-'", "")
	}

	if net.ParseIP(target) != nil {
		return nil
	}

	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_', r == ':', r == '%':
		default:
			return pwerrors.New(pwerrors.ErrTarget, "target contains invalid character "+quoteRune(r), "enter an IP address or hostname")
		}
	}
	return nil
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
