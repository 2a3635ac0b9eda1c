package types

import (
	"errors"
	"strings"
)

func NewEmailParts(emailAddress string) (EmailParts, error) {
	p, err := splitLocalAndDomain(emailAddress)
	if err != nil {
		return EmailParts{}, err
	}

	return p, nil
}

type EmailParts struct {
	Address string
	Local   string
	Domain  string
}

// splitLocalAndDomain splits on the first @. The format pattern doesn't allow an @ in the local part, so for
// addresses that passed the format gate there is only one.
func splitLocalAndDomain(input string) (EmailParts, error) {
	i := strings.Index(input, "@")
	if 0 >= i || i >= len(input)-1 {
		return EmailParts{}, ErrInvalidEmailAddress
	}

	return EmailParts{
		Address: input,
		Local:   input[:i],
		Domain:  strings.ToLower(input[i+1:]),
	}, nil
}

var (
	ErrInvalidEmailAddress = errors.New("invalid e-mail address, address is missing @")
)
