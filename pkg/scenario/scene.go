package scenario

import (
	"cmp"
	"fmt"
	"slices"
)

// SceneType tags the kind of node a scene is in the scenario graph.
type SceneType string

const (
	SceneArrival          SceneType = "arrival"
	SceneBriefing         SceneType = "briefing"
	SceneNetworkSelection SceneType = "network_selection"
	SceneCaptivePortal    SceneType = "captive_portal"
	SceneTaskPrompt       SceneType = "task_prompt"
	SceneConsequence      SceneType = "consequence"
	SceneDebrief          SceneType = "debrief"
	SceneCompletion       SceneType = "completion"
)

// IsDecision reports whether the player makes a scored decision in scenes
// of this type. Undo snapshots are only taken before these.
func (t SceneType) IsDecision() bool {
	switch t {
	case SceneNetworkSelection, SceneCaptivePortal, SceneTaskPrompt:
		return true
	}
	return false
}

// Scene is a single node of the scenario graph. Choices are its outgoing edges.
type Scene struct {
	ID           string       `json:"id"`
	Type         SceneType    `json:"type"`
	Title        string       `json:"title,omitempty"`
	TitleKey     string       `json:"titleKey,omitempty"`
	Narrative    string       `json:"narrative,omitempty"`
	NarrativeKey string       `json:"narrativeKey,omitempty"`
	NextSceneID  string       `json:"nextSceneId,omitempty"` // linear advance
	Networks     []Network    `json:"networks,omitempty"`    // network_selection and captive_portal only
	Task         *Task        `json:"task,omitempty"`        // task_prompt only
	Actions      []Action     `json:"actions,omitempty"`
	Choices      []Choice     `json:"choices,omitempty"`
	Consequence  *Consequence `json:"consequence,omitempty"`
}

// Choice returns the edge keyed by actionID.
func (sc *Scene) Choice(actionID string) (Choice, bool) {
	for _, c := range sc.Choices {
		if c.ActionID == actionID {
			return c, true
		}
	}
	return Choice{}, false
}

// Action returns the action with the given ID.
func (sc *Scene) Action(id string) (Action, bool) {
	for _, a := range sc.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Network returns the network with the given ID.
func (sc *Scene) Network(id string) (Network, bool) {
	for _, n := range sc.Networks {
		if n.ID == id {
			return n, true
		}
	}
	return Network{}, false
}

// IsTerminal reports whether the scene has no way forward.
func (sc *Scene) IsTerminal() bool {
	if sc.NextSceneID != "" {
		return false
	}
	for _, c := range sc.Choices {
		if c.NextSceneID != "" && c.NextSceneID != sc.ID {
			return false
		}
	}
	return true
}

// RiskLevel classifies how dangerous a network is.
type RiskLevel string

const (
	RiskSafe       RiskLevel = "safe"
	RiskSuspicious RiskLevel = "suspicious"
	RiskDangerous  RiskLevel = "dangerous"
)

// Network is a selectable WiFi (or mobile data) connection.
type Network struct {
	ID              string    `json:"id"`
	SSID            string    `json:"ssid"`
	IsSecured       bool      `json:"isSecured"`
	SecurityType    string    `json:"securityType,omitempty"` // e.g. "WPA2", "WPA3", "open"
	SignalStrength  int       `json:"signalStrength"`         // 0-5
	RiskLevel       RiskLevel `json:"riskLevel"`
	IsTrap          bool      `json:"isTrap,omitempty"`       // honeypot posing as a legitimate network
	IsMobileData    bool      `json:"isMobileData,omitempty"` // inherently protected
	VerifiedByStaff bool      `json:"verifiedByStaff,omitempty"`
	ActionID        string    `json:"actionId,omitempty"`
	Description     string    `json:"description,omitempty"`
	DescriptionKey  string    `json:"descriptionKey,omitempty"`
}

// DefaultEdgeKey is the choice key used for a network without an explicit actionId.
func (n Network) DefaultEdgeKey() string {
	return fmt.Sprintf("connect_%s", n.ID)
}

// EdgeKey is the choice key expected for selecting this network.
func (n Network) EdgeKey() string {
	if n.ActionID != "" {
		return n.ActionID
	}
	return n.DefaultEdgeKey()
}

// ActionType identifies the side effects an action carries.
type ActionType string

const (
	ActionUseVPN         ActionType = "use_vpn"
	ActionVerifyStaff    ActionType = "verify_staff"
	ActionPostpone       ActionType = "postpone"
	ActionInstallProfile ActionType = "install_profile"
	ActionProceed        ActionType = "proceed"
)

// Action is a non-network decision offered by a scene.
type Action struct {
	ID             string     `json:"id"`
	Type           ActionType `json:"type"`
	Label          string     `json:"label,omitempty"`
	LabelKey       string     `json:"labelKey,omitempty"`
	Description    string     `json:"description,omitempty"`
	DescriptionKey string     `json:"descriptionKey,omitempty"`
}

// Choice is a graph edge: taking ActionID moves the player to NextSceneID.
type Choice struct {
	ActionID    string `json:"actionId"`
	NextSceneID string `json:"nextSceneId"`
}

// Sensitivity is how much damage leaking a task's data would do.
type Sensitivity string

const (
	SensitivityLow      Sensitivity = "low"
	SensitivityMedium   Sensitivity = "medium"
	SensitivityHigh     Sensitivity = "high"
	SensitivityCritical Sensitivity = "critical"
)

// Task is the online errand the player is asked to perform.
type Task struct {
	Type             string      `json:"type"` // e.g. "banking", "email", "browsing"
	SensitivityLevel Sensitivity `json:"sensitivityLevel"`
	Title            string      `json:"title,omitempty"`
	TitleKey         string      `json:"titleKey,omitempty"`
	Description      string      `json:"description,omitempty"`
	DescriptionKey   string      `json:"descriptionKey,omitempty"`
	RiskHint         string      `json:"riskHint,omitempty"`
	RiskHintKey      string      `json:"riskHintKey,omitempty"`
}

// IsCritical reports whether the task handles critical data.
func (t *Task) IsCritical() bool {
	return t != nil && t.SensitivityLevel == SensitivityCritical
}

// Severity is the tone of a consequence.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Consequence is the scored outcome carried by a consequence scene.
type Consequence struct {
	Severity           Severity          `json:"severity"`
	Type               string            `json:"type"` // rationale tag, e.g. "credential_harvested", "vpn_protected"
	Title              string            `json:"title,omitempty"`
	TitleKey           string            `json:"titleKey,omitempty"`
	Description        string            `json:"description,omitempty"`
	DescriptionKey     string            `json:"descriptionKey,omitempty"`
	SafetyPointsChange int               `json:"safetyPointsChange"`
	RiskPointsChange   int               `json:"riskPointsChange"`
	CascadingEffects   []CascadingEffect `json:"cascadingEffects,omitempty"`
}

// CascadingEffect is a secondary narrative consequence.
type CascadingEffect struct {
	Order   int    `json:"order"`
	Icon    string `json:"icon"`
	Text    string `json:"text,omitempty"`
	TextKey string `json:"textKey,omitempty"`
}

// OrderedEffects returns the cascading effects sorted by Order.
func (c *Consequence) OrderedEffects() []CascadingEffect {
	if c == nil || len(c.CascadingEffects) == 0 {
		return nil
	}
	out := slices.Clone(c.CascadingEffects)
	slices.SortStableFunc(out, func(a, b CascadingEffect) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}
