package humanize

import "testing"

func TestSI(t *testing.T) {
	cases := []struct {
		value  float64
		expect string
	}{
		{0, "  0.00 pkt/s"},
		{100, "100.00 pkt/s"},
		{1250, "  1.25 kpkt/s"},
		{2_500_000, "  2.50 Mpkt/s"},
		{7e12, "7000.00 Gpkt/s"},
	}
	for _, tc := range cases {
		if got := SI(tc.value, "pkt/s"); got != tc.expect {
			t.Errorf("SI(%f): expected %q, got %q", tc.value, tc.expect, got)
		}
	}
}
