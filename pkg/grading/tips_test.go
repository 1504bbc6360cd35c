package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

func TestSecurityTips(t *testing.T) {
	tests := []struct {
		name string
		vpn  bool
		risk int
		want []Tip
	}{
		{
			name: "clean run with vpn",
			vpn:  true,
			want: []Tip{TipGreatJob, TipSharePractices},
		},
		{
			name: "clean run without vpn",
			want: []Tip{TipUseVPN},
		},
		{
			name: "some risk",
			vpn:  true,
			risk: 30,
			want: []Tip{TipVerifyNetworks, TipNeverInstallProfiles, TipPostponeSensitiveTasks},
		},
		{
			name: "high risk no vpn",
			risk: 31,
			want: []Tip{
				TipUseVPN,
				TipVerifyNetworks, TipNeverInstallProfiles, TipPostponeSensitiveTasks,
				TipUseMobileData, TipCautionHighTraffic,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := state.GameSession{VPNEnabled: tt.vpn, Score: state.Score{RiskPoints: tt.risk}}
			assert.Equal(t, tt.want, SecurityTips(gs))
		})
	}
}

func TestTipKey(t *testing.T) {
	assert.Equal(t, "tips.use_vpn", TipUseVPN.Key())
}

func TestTipText(t *testing.T) {
	all := []Tip{
		TipUseVPN, TipVerifyNetworks, TipNeverInstallProfiles, TipPostponeSensitiveTasks,
		TipUseMobileData, TipCautionHighTraffic, TipGreatJob, TipSharePractices,
	}
	for _, tip := range all {
		assert.NotEmpty(t, tip.Text(), tip)
	}
	assert.Empty(t, Tip("unknown").Text())
}
