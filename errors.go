package fmc

import "fmt"

// ConfigError reports invalid construction parameters.  It is returned
// before any step executes.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "fmc: invalid config: " + e.Msg }

func Configf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ContractError reports an Environment or Model batch whose shape does not
// match the swarm population or the dimensions fixed at reset.  Downstream
// array operations assume fixed shapes, so these are fatal for the step
// that produced them.
type ContractError struct {
	Field string
	Want  int
	Got   int
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("fmc: collaborator returned %v for %v, want %v", e.Got, e.Field, e.Want)
}
