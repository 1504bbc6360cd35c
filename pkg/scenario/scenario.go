package scenario

// Difficulty is the audience level a scenario is authored for.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Scenario is the immutable template for a training run. It is loaded once
// from content files and shared read-only between sessions.
type Scenario struct {
	ID             string     `json:"id"`
	Title          string     `json:"title,omitempty"`
	TitleKey       string     `json:"titleKey,omitempty"`
	Description    string     `json:"description,omitempty"`
	DescriptionKey string     `json:"descriptionKey,omitempty"`
	Difficulty     Difficulty `json:"difficulty"`
	EstimatedTime  int        `json:"estimatedTime,omitempty"` // minutes
	StartSceneID   string     `json:"startSceneId"`
	TimerSeconds   int        `json:"timerSeconds,omitempty"`
	Scenes         []Scene    `json:"scenes"`

	// Exploration root: the scene whose networks must each be sampled
	// once before the scored final run starts. Both are optional.
	RootSceneID    string   `json:"rootSceneId,omitempty"`
	RootNetworkIDs []string `json:"rootNetworkIds,omitempty"`
}

// Summary is the listing view of a scenario.
type Summary struct {
	ID             string     `json:"id"`
	Title          string     `json:"title,omitempty"`
	TitleKey       string     `json:"titleKey,omitempty"`
	Description    string     `json:"description,omitempty"`
	DescriptionKey string     `json:"descriptionKey,omitempty"`
	Difficulty     Difficulty `json:"difficulty"`
	EstimatedTime  int        `json:"estimatedTime,omitempty"`
	TimerSeconds   int        `json:"timerSeconds,omitempty"`
	SceneCount     int        `json:"sceneCount"`
	Explorable     bool       `json:"explorable"`
}

// Summary returns the listing view of the scenario.
func (s *Scenario) Summary() Summary {
	return Summary{
		ID:             s.ID,
		Title:          s.Title,
		TitleKey:       s.TitleKey,
		Description:    s.Description,
		DescriptionKey: s.DescriptionKey,
		Difficulty:     s.Difficulty,
		EstimatedTime:  s.EstimatedTime,
		TimerSeconds:   s.TimerSeconds,
		SceneCount:     len(s.Scenes),
		Explorable:     s.Explorable(),
	}
}

// Scene returns the scene with the given ID.
func (s *Scenario) Scene(id string) (*Scene, bool) {
	if s == nil || id == "" {
		return nil, false
	}
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return &s.Scenes[i], true
		}
	}
	return nil, false
}

// FindNetwork searches every scene for a network with the given ID.
// Network IDs are expected to be unique across a scenario.
func (s *Scenario) FindNetwork(id string) (Network, bool) {
	if s == nil || id == "" {
		return Network{}, false
	}
	for i := range s.Scenes {
		if n, ok := s.Scenes[i].Network(id); ok {
			return n, true
		}
	}
	return Network{}, false
}

// Explorable reports whether the scenario designates an exploration root.
func (s *Scenario) Explorable() bool {
	return s.RootSceneID != "" && len(s.RootNetworkIDs) > 0
}
