package source

// adopt links children to parent and returns parent.
func adopt(parent *Node, children []*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = parent
		parent.Children = append(parent.Children, c)
	}
	return parent
}

// NewSource wraps an entity or stage in a document root.
func NewSource(name string, content *Node) *Node {
	return adopt(&Node{Kind: KindSource, Name: name}, []*Node{content})
}

// NewEntity builds an entity holding the given variables.
func NewEntity(name string, vars ...*Node) *Node {
	return adopt(&Node{Kind: KindEntity, Name: name}, vars)
}

// NewStage builds a stage; children may be sections or variables.
func NewStage(name string, children ...*Node) *Node {
	return adopt(&Node{Kind: KindStage, Name: name}, children)
}

// NewSection builds a section of questions.
func NewSection(name string, questions ...*Node) *Node {
	return adopt(&Node{Kind: KindSection, Name: name}, questions)
}

// NewQuestion builds a question; children may be questions or variables.
func NewQuestion(name, label string, children ...*Node) *Node {
	return adopt(&Node{Kind: KindQuestion, Name: name, Label: label}, children)
}

// NewVariable builds a variable; children may be variables or restrictions.
func NewVariable(name, label, typ string, children ...*Node) *Node {
	return adopt(&Node{Kind: KindVariable, Name: name, Label: label, Type: typ}, children)
}

// NewRestriction builds a fixed choice set.
func NewRestriction(enums ...string) *Node {
	return &Node{Kind: KindRestriction, Enums: append([]string(nil), enums...)}
}
