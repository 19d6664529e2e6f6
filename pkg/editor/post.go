package editor

import "github.com/entrhq/nblog/pkg/model"

// Post is the fully rendered input to one automaton run. Title and Body are
// final text; rendering happens upstream.
type Post struct {
	Title    string
	Body     string
	Category string
	Tags     []string
	Settings model.PublishSettings
}
