// Command goforms-token signs, verifies and load-tests goForms CSRF tokens outside of a
// running application.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
