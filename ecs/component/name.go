package component

// Name labels an entity so prefabs can refer to it, e.g. as a follow target.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
