package workflow

import "context"

// Store persists workflow documents by name.
type Store interface {
	// Save writes the document under the given workflow name,
	// replacing any previous version.
	Save(ctx context.Context, name string, doc *Document) error

	// Load reads the named workflow document.
	Load(ctx context.Context, name string) (*Document, error)

	// List returns the names of all stored workflows.
	List(ctx context.Context) ([]string, error)

	// Delete removes the named workflow.
	Delete(ctx context.Context, name string) error
}
