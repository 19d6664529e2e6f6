package editor

// State identifies the automaton's position in the publish pipeline. Steps
// execute in declaration order; a retry rewinds to StateInitial and replays
// the whole pipeline.
type State int

const (
	StateInitial State = iota
	StateNavigateToEditor
	StateDismissDraftPrompt
	StateDismissHelpOverlay
	StateEnterTitle
	StateEnterBody
	StateOpenPublishDialog
	StateConfigureCategory
	StateConfigureTags
	StateConfigureVisibility
	StateConfigurePublishToggles
	StateConfirmPublish
	StateVerifyPublished
	StateSucceeded
	StateFailed
)

var stateNames = map[State]string{
	StateInitial:                 "Initial",
	StateNavigateToEditor:        "NavigateToEditor",
	StateDismissDraftPrompt:      "DismissDraftPrompt",
	StateDismissHelpOverlay:      "DismissHelpOverlay",
	StateEnterTitle:              "EnterTitle",
	StateEnterBody:               "EnterBody",
	StateOpenPublishDialog:       "OpenPublishDialog",
	StateConfigureCategory:       "ConfigureCategory",
	StateConfigureTags:           "ConfigureTags",
	StateConfigureVisibility:     "ConfigureVisibility",
	StateConfigurePublishToggles: "ConfigurePublishToggles",
	StateConfirmPublish:          "ConfirmPublish",
	StateVerifyPublished:         "VerifyPublished",
	StateSucceeded:               "Succeeded",
	StateFailed:                  "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
