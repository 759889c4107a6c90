package pseudotcp

//
// Human readable diagnostics
//

import (
	"fmt"
	"strings"
)

// flagNames is ordered like the flags are printed.
var flagNames = []struct {
	bit  uint8
	name string
}{
	{FlagFIN, "FIN"},
	{FlagACK, "ACK"},
	{FlagSYN, "SYN"},
	{FlagRST, "RST"},
}

// FlagNames returns the names of the known bits set in flags. The
// return value is empty when no known bit is set.
func FlagNames(flags uint8) []string {
	var out []string
	for _, entry := range flagNames {
		if flags&entry.bit != 0 {
			out = append(out, entry.name)
		}
	}
	return out
}

// DescribeFlags returns a printable description of flags.
func DescribeFlags(flags uint8) string {
	names := FlagNames(flags)
	if len(names) <= 0 {
		return "unrecognized type: please check your packet format"
	}
	return strings.Join(names, " ")
}

// DescribeECN returns a printable description of the ECN byte. Values
// other than [ECNDisabled] and [ECNActive] still count as set but are
// reported as unrecognized.
func DescribeECN(value uint8) string {
	switch value {
	case ECNDisabled:
		return "ECN bit is disabled"
	case ECNActive:
		return "ECN bit is enabled"
	default:
		return fmt.Sprintf("ECN bit has unrecognized value %d: please check your packet format", value)
	}
}

// Describe returns one line per header field.
func Describe(h *Header) []string {
	return []string{
		fmt.Sprintf("flow ID: %d", h.FlowID),
		fmt.Sprintf("type: %s", DescribeFlags(h.Flags)),
		fmt.Sprintf("seq: %d", h.Seq),
		fmt.Sprintf("ack seq: %d", h.AckSeq),
		DescribeECN(h.ECN),
		fmt.Sprintf("window size: %d", h.Window),
	}
}
