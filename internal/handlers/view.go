package handlers

import (
	"slices"

	"golang.org/x/text/language"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// SessionResponse is the session as clients see it: the stored state plus
// everything derived from it.
type SessionResponse struct {
	Session  state.GameSession `json:"session"`
	Grade    grading.Grade     `json:"grade"`
	Scene    *SceneView        `json:"scene,omitempty"`
	Terminal bool              `json:"terminal"`
	CanUndo  bool              `json:"canUndo"`
}

// CompleteResponse adds the post-run advice to a finished session.
type CompleteResponse struct {
	SessionResponse
	Tips []TipView `json:"tips"`
}

type TipView struct {
	ID   grading.Tip `json:"id"`
	Key  string      `json:"key"`
	Text string      `json:"text"`
}

// SceneView is a scene with its strings resolved for one locale.
type SceneView struct {
	ID          string             `json:"id"`
	Type        scenario.SceneType `json:"type"`
	Title       string             `json:"title,omitempty"`
	Narrative   string             `json:"narrative,omitempty"`
	Networks    []NetworkView      `json:"networks,omitempty"`
	Task        *TaskView          `json:"task,omitempty"`
	Actions     []ActionView       `json:"actions,omitempty"`
	Consequence *ConsequenceView   `json:"consequence,omitempty"`
	HasNext     bool               `json:"hasNext"`
}

// NetworkView omits the trap flag and staff verification so clients
// cannot read the answer off the response.
type NetworkView struct {
	ID             string             `json:"id"`
	SSID           string             `json:"ssid"`
	IsSecured      bool               `json:"isSecured"`
	SecurityType   string             `json:"securityType,omitempty"`
	SignalStrength int                `json:"signalStrength"`
	RiskLevel      scenario.RiskLevel `json:"riskLevel"`
	IsMobileData   bool               `json:"isMobileData,omitempty"`
	Description    string             `json:"description,omitempty"`
	Explored       bool               `json:"explored,omitempty"`
}

type TaskView struct {
	Type             string               `json:"type"`
	SensitivityLevel scenario.Sensitivity `json:"sensitivityLevel"`
	Title            string               `json:"title,omitempty"`
	Description      string               `json:"description,omitempty"`
	RiskHint         string               `json:"riskHint,omitempty"`
}

type ActionView struct {
	ID          string              `json:"id"`
	Type        scenario.ActionType `json:"type"`
	Label       string              `json:"label,omitempty"`
	Description string              `json:"description,omitempty"`
}

type ConsequenceView struct {
	Severity         scenario.Severity `json:"severity"`
	Type             string            `json:"type"`
	Title            string            `json:"title,omitempty"`
	Description      string            `json:"description,omitempty"`
	CascadingEffects []EffectView      `json:"cascadingEffects,omitempty"`
}

type EffectView struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// newSceneView localizes scene for tag. gs marks networks already sampled
// during exploration.
func newSceneView(scene *scenario.Scene, gs state.GameSession, tr scenario.Translator, tag language.Tag) *SceneView {
	if scene == nil {
		return nil
	}
	loc := func(literal, key string) string {
		return scenario.Localized(tr, tag, literal, key)
	}

	v := &SceneView{
		ID:        scene.ID,
		Type:      scene.Type,
		Title:     loc(scene.Title, scene.TitleKey),
		Narrative: loc(scene.Narrative, scene.NarrativeKey),
		HasNext:   scene.NextSceneID != "",
	}
	for _, n := range scene.Networks {
		nv := NetworkView{
			ID:             n.ID,
			SSID:           n.SSID,
			IsSecured:      n.IsSecured,
			SecurityType:   n.SecurityType,
			SignalStrength: n.SignalStrength,
			RiskLevel:      n.RiskLevel,
			IsMobileData:   n.IsMobileData,
			Description:    loc(n.Description, n.DescriptionKey),
		}
		if gs.Exploration != nil {
			nv.Explored = slices.Contains(gs.Exploration.ExploredNetworkIDs, n.ID)
		}
		v.Networks = append(v.Networks, nv)
	}
	if t := scene.Task; t != nil {
		v.Task = &TaskView{
			Type:             t.Type,
			SensitivityLevel: t.SensitivityLevel,
			Title:            loc(t.Title, t.TitleKey),
			Description:      loc(t.Description, t.DescriptionKey),
			RiskHint:         loc(t.RiskHint, t.RiskHintKey),
		}
	}
	for _, a := range scene.Actions {
		v.Actions = append(v.Actions, ActionView{
			ID:          a.ID,
			Type:        a.Type,
			Label:       loc(a.Label, a.LabelKey),
			Description: loc(a.Description, a.DescriptionKey),
		})
	}
	if c := scene.Consequence; c != nil {
		cv := &ConsequenceView{
			Severity:    c.Severity,
			Type:        c.Type,
			Title:       loc(c.Title, c.TitleKey),
			Description: loc(c.Description, c.DescriptionKey),
		}
		for _, e := range c.OrderedEffects() {
			cv.CascadingEffects = append(cv.CascadingEffects, EffectView{Icon: e.Icon, Text: loc(e.Text, e.TextKey)})
		}
		v.Consequence = cv
	}
	return v
}

func newTipViews(tips []grading.Tip, tr scenario.Translator, tag language.Tag) []TipView {
	out := make([]TipView, 0, len(tips))
	for _, t := range tips {
		out = append(out, TipView{
			ID:   t,
			Key:  t.Key(),
			Text: scenario.Localized(tr, tag, t.Text(), t.Key()),
		})
	}
	return out
}

// localizedSummaries resolves the listing strings of every summary.
func localizedSummaries(list []scenario.Summary, tr scenario.Translator, tag language.Tag) []scenario.Summary {
	out := make([]scenario.Summary, len(list))
	for i, s := range list {
		s.Title = scenario.Localized(tr, tag, s.Title, s.TitleKey)
		s.Description = scenario.Localized(tr, tag, s.Description, s.DescriptionKey)
		out[i] = s
	}
	return out
}
