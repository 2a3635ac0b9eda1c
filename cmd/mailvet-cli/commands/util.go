package commands

import (
	"bufio"
	"io"
	"net"
	"os"
	"strings"

	"github.com/mailvet/mailvet/cmd/mailvet-cli/iterator"
	"github.com/mailvet/mailvet/validator"
)

// isStdinPiped returns true if our input is from a pipe
func isStdinPiped() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	return isPiped(fi)
}

// isStdoutPiped returns true if the output is a pipe
func isStdoutPiped() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	return isPiped(fi)
}

func isPiped(fi os.FileInfo) bool {
	if fi == nil {
		return false
	}

	return fi.Mode()&os.ModeNamedPipe == os.ModeNamedPipe
}

// createLineIterator yields one trimmed line per iteration
func createLineIterator(r io.Reader) *iterator.CallbackIterator {
	scanner := bufio.NewScanner(r)

	return iterator.NewCallbackIterator(
		scanner.Scan,
		func() (string, error) {
			return strings.TrimSpace(scanner.Text()), nil
		},
		func() error {
			return scanner.Err()
		},
	)
}

// newLookupValidator builds the validator, optionally with a custom name server
func newLookupValidator(resolverIP net.IP) validator.EmailValidator {
	var lookup validator.LookupResolver
	if resolverIP != nil {
		lookup = validator.NewCustomLookupResolver(resolverIP)
	}

	return validator.NewEmailAddressValidator(validator.NewResolver(lookup, validator.DefaultProbeTimeout))
}
