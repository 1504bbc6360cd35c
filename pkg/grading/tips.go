package grading

import "github.com/jwebster45206/hotspot-trainer/pkg/state"

// Tip identifies a piece of post-run advice. Presentation maps it to text
// via the "tips.<id>" translation key.
type Tip string

const (
	TipUseVPN                 Tip = "use_vpn"
	TipVerifyNetworks         Tip = "verify_networks"
	TipNeverInstallProfiles   Tip = "never_install_profiles"
	TipPostponeSensitiveTasks Tip = "postpone_sensitive_tasks"
	TipUseMobileData          Tip = "use_mobile_data"
	TipCautionHighTraffic     Tip = "caution_high_traffic"
	TipGreatJob               Tip = "great_job"
	TipSharePractices         Tip = "share_practices"
)

// HighRiskThreshold is the risk above which the extra tips apply.
const HighRiskThreshold = 30

var tipText = map[Tip]string{
	TipUseVPN:                 "Turn on a VPN before using any public network.",
	TipVerifyNetworks:         "Confirm the exact network name with staff before connecting.",
	TipNeverInstallProfiles:   "Never install a configuration profile or certificate to get online.",
	TipPostponeSensitiveTasks: "Leave banking and other sensitive tasks until you are on a trusted connection.",
	TipUseMobileData:          "Use your phone's mobile data when nothing trustworthy is available.",
	TipCautionHighTraffic:     "Be extra careful in busy places like airports and hotels where fake hotspots are common.",
	TipGreatJob:               "Great job! You kept your data safe the whole way through.",
	TipSharePractices:         "Share these habits with friends and colleagues.",
}

// Key is the translation key for the tip.
func (t Tip) Key() string {
	return "tips." + string(t)
}

// Text is the English fallback shown when no translation resolves Key.
func (t Tip) Text() string {
	return tipText[t]
}

// SecurityTips returns the ordered advice for a session.
func SecurityTips(gs state.GameSession) []Tip {
	var tips []Tip
	if !gs.VPNEnabled {
		tips = append(tips, TipUseVPN)
	}
	if gs.Score.RiskPoints > 0 {
		tips = append(tips, TipVerifyNetworks, TipNeverInstallProfiles, TipPostponeSensitiveTasks)
	}
	if gs.Score.RiskPoints > HighRiskThreshold {
		tips = append(tips, TipUseMobileData, TipCautionHighTraffic)
	}
	if len(tips) == 0 {
		tips = []Tip{TipGreatJob, TipSharePractices}
	}
	return tips
}
