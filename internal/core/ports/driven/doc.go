// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a build to run:
//
//   - CorpusLoader: Discovers and reads the markdown files under a root
//   - Normaliser: Strips front matter and extracts a title per document
//   - DiagramRenderer: Turns diagram source into an image (mmdc)
//   - Typesetter: Turns the combined body into the output file (pandoc, goldmark)
//   - ToolLocator: Finds external binaries on PATH
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DiagramCache: Reuses rendered images. Without it every block is rendered.
//   - Watcher: Reports corpus changes. Only needed for watch mode.
//   - ConfigStore: Application configuration. Only read by the CLI.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
