package commands

import "taskflow/internal/service"

// optionalString is a string flag that records whether it was given, so
// an explicit empty value can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// ptr returns the value for a TaskInput field, nil when the flag was absent.
func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	return service.String(o.value)
}
