package registry

// SchemaRegistry manages JSON schemas for provider configuration blocks,
// keyed by "<capability-kind>.<provider>".
type SchemaRegistry interface {
	// Register adds a schema under a key. model can be a Go struct (to
	// generate the schema via reflection) or a raw JSON schema string,
	// byte slice or map.
	Register(key string, model interface{}) error

	// GetSchema returns the JSON schema registered under a key.
	GetSchema(key string) (string, bool)

	// List returns all registered keys.
	List() []string
}
