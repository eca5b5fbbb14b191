package fix

import (
	"fmt"
	"os"
)

// validateFixArgs validates the arguments provided to the fix command.
func validateFixArgs(options *RunOptionsFix, args []string) error {
	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("the target path does not exist: %v", path)
		}
	}

	if options.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	if options.Timeout < 0 {
		return fmt.Errorf("the 'timeout' flag must be a positive duration")
	}

	if options.Base != "" && !options.Changed {
		return fmt.Errorf("the 'base' flag requires the 'changed' flag")
	}
	return nil
}
