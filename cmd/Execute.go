package cmd

import (
	"fmt"
	"os"
)

// exitFunc allows tests to stub process exit behavior
var exitFunc = os.Exit

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}
