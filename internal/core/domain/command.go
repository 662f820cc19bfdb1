package domain

// Command is an external process invocation, such as the declaration emitter
// or an on-success command hook.
type Command struct {
	Name        string
	Args        []string
	Environment map[string]string
	WorkingDir  string
}

// Argv returns the command name followed by its arguments.
func (c *Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}
