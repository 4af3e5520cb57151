package review

import "fmt"

// ServiceFault is returned when the completion service fails during a turn.
// The turn is abandoned; Err is the untouched provider error.
type ServiceFault struct {
	State State
	Event string
	Err   error
}

func (f *ServiceFault) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Event, f.State, f.Err)
}

func (f *ServiceFault) Unwrap() error {
	return f.Err
}

// Cause lets github.com/pkg/errors.Cause reach the provider error.
func (f *ServiceFault) Cause() error {
	return f.Err
}
