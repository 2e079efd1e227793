package component

// ReactionScript names a tengo script run for every collision record the
// entity receives.
type ReactionScript struct {
	Path string
}

var ReactionScriptComponent = NewComponent[ReactionScript]()
