package navigation

// Accordion tracks which component and which story of that component are
// expanded. At most one of each is open.
type Accordion struct {
	Component string `json:"openComponent" yaml:"openComponent"`
	Story     string `json:"openStory" yaml:"openStory"`
}

// ToggleComponent opens name, or closes it if it is already open. The open
// story is closed either way.
func (a Accordion) ToggleComponent(name string) Accordion {
	if a.Component == name {
		return Accordion{}
	}
	return Accordion{Component: name}
}

// ToggleStory opens name within the open component, or closes it if it is
// already open.
func (a Accordion) ToggleStory(name string) Accordion {
	if a.Story == name {
		a.Story = ""
		return a
	}
	a.Story = name
	return a
}

// Sync forces the path to the active record open.
func (a Accordion) Sync(s State) Accordion {
	if s.ActiveID == "" {
		return a
	}
	return Accordion{Component: s.ActiveComponent, Story: s.ActiveStory}
}

func (a Accordion) IsComponentOpen(name string) bool {
	return a.Component != "" && a.Component == name
}

func (a Accordion) IsStoryOpen(component, story string) bool {
	return a.IsComponentOpen(component) && a.Story != "" && a.Story == story
}
