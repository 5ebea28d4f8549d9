package domain

// ToolRequirement names an external binary a collaborator needs.
type ToolRequirement struct {
	// Name is the executable looked up on PATH.
	Name string

	// Hint tells the user how to install it.
	Hint string
}

// Install hints for the default collaborators.
var (
	ToolPandoc   = ToolRequirement{Name: "pandoc", Hint: "brew install pandoc"}
	ToolTectonic = ToolRequirement{Name: "tectonic", Hint: "brew install tectonic"}
	ToolMermaid  = ToolRequirement{Name: "mmdc", Hint: "npm i -g @mermaid-js/mermaid-cli"}
)
