package acl_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/infrastructure/acl"
)

func TestAccessControl(t *testing.T) {
	accessControl := acl.NewAccessControl(
		[]string{"admin", " "}, []string{" depositor ", ""},
	)

	tests := []struct {
		account     string
		isAdmin     bool
		isDepositor bool
	}{
		{"admin", true, true},
		{"depositor", false, true},
		{"alice", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.isAdmin, accessControl.IsAdmin(tt.account), tt.account)
		require.Equal(t, tt.isDepositor, accessControl.IsDepositor(tt.account), tt.account)
	}
}
