package onesecmail

import (
	"context"
	"slices"
	"strings"

	"github.com/onesecmail/client-go/internal/api"
)

var reservedLogins = []string{"abuse", "admin", "contact", "hostmaster", "postmaster", "webmaster"}

// ReservedLogins returns the local parts whose mailboxes cannot be read.
// The result is a copy.
func ReservedLogins() []string {
	return slices.Clone(reservedLogins)
}

// IsReservedLogin reports whether local is one of ReservedLogins,
// ignoring case.
func IsReservedLogin(local string) bool {
	return slices.Contains(reservedLogins, strings.ToLower(local))
}

// splitAddress splits a validated address into its local part and domain.
func splitAddress(address string) (local, domain string) {
	local, domain, _ = strings.Cut(address, "@")
	return local, domain
}

// validateAddress checks address syntax, reserved logins and the provider's
// domain list, in that order. It returns the lower-cased address.
func (c *Client) validateAddress(ctx context.Context, address string, opts ...CallOption) (string, error) {
	if !api.IsEmail(address) {
		return "", &AddressError{Address: address, Reason: ErrInvalidAddress}
	}

	normalized := strings.ToLower(address)
	local, domain := splitAddress(normalized)

	if IsReservedLogin(local) {
		related := make([]string, 0, len(reservedLogins))
		for _, login := range reservedLogins {
			related = append(related, login+"@"+domain)
		}
		return "", &AddressError{Address: address, Reason: ErrForbiddenLogin, Related: related}
	}

	domains, err := c.apiClient.GetDomainList(ctx, opts...)
	if err != nil {
		return "", err
	}
	if !slices.Contains(domains, domain) {
		related := make([]string, 0, len(domains))
		for _, d := range domains {
			related = append(related, local+"@"+d)
		}
		return "", &AddressError{Address: address, Reason: ErrUnsupportedDomain, Related: related}
	}

	return normalized, nil
}
