package acl

import (
	"strings"

	"github.com/tdex-network/payoutd/internal/core/ports"
)

type accessControl struct {
	admins     map[string]struct{}
	depositors map[string]struct{}
}

// NewAccessControl returns an AccessControl backed by static lists of
// accounts. Admins are implicitly depositors.
func NewAccessControl(admins, depositors []string) ports.AccessControl {
	return &accessControl{
		admins:     toSet(admins),
		depositors: toSet(depositors),
	}
}

func (a *accessControl) IsAdmin(account string) bool {
	_, ok := a.admins[account]
	return ok
}

func (a *accessControl) IsDepositor(account string) bool {
	if a.IsAdmin(account) {
		return true
	}
	_, ok := a.depositors[account]
	return ok
}

func toSet(accounts []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, account := range accounts {
		account = strings.TrimSpace(account)
		if account == "" {
			continue
		}
		set[account] = struct{}{}
	}
	return set
}
