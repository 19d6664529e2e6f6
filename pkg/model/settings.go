package model

// Visibility controls who can see a published post.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityNeighbor Visibility = "neighbor"
	VisibilityMutual   Visibility = "mutual"
	VisibilityPrivate  Visibility = "private"
)

// ShareMode controls how the post may be shared to other blogs and cafes.
type ShareMode string

const (
	ShareLink    ShareMode = "link"
	ShareContent ShareMode = "content"
	ShareNone    ShareMode = "none"
)

// PublishSettings are the publish-dialog options applied when a post is
// published. Immutable once constructed; the automaton reads them and only
// clicks a toggle whose observed state differs from the desired one.
type PublishSettings struct {
	Visibility         Visibility
	AllowComment       bool
	AllowSympathy      bool
	AllowSearch        bool
	AllowExternalShare bool
	BlogCafeShare      ShareMode
	IsNotice           bool
}

// DefaultPublishSettings returns the permissive defaults: public visibility,
// every toggle on, link-only sharing, not a notice.
func DefaultPublishSettings() PublishSettings {
	return PublishSettings{
		Visibility:         VisibilityPublic,
		AllowComment:       true,
		AllowSympathy:      true,
		AllowSearch:        true,
		AllowExternalShare: true,
		BlogCafeShare:      ShareLink,
		IsNotice:           false,
	}
}
