package ledger_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/payoutd/internal/core/domain"
)

// **** Weight oracle ****

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) WeightAt(
	ctx context.Context, account string, marker uint64,
) (uint64, uint64, error) {
	args := m.Called(ctx, account, marker)

	var weight, total uint64
	if a := args.Get(0); a != nil {
		weight = a.(uint64)
	}
	if a := args.Get(1); a != nil {
		total = a.(uint64)
	}
	return weight, total, args.Error(2)
}

func (m *mockOracle) CurrentMarker(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

// **** Transfer gateway ****

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) TransferNative(
	ctx context.Context, to string, amount uint64,
) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

func (m *mockGateway) TransferToken(
	ctx context.Context, token, to string, amount uint64,
) error {
	args := m.Called(ctx, token, to, amount)
	return args.Error(0)
}

func (m *mockGateway) Collect(
	ctx context.Context, from string, asset domain.Asset, amount uint64,
) error {
	args := m.Called(ctx, from, asset, amount)
	return args.Error(0)
}

type mockBatchGateway struct {
	mockGateway
}

func (m *mockBatchGateway) TransferAll(
	ctx context.Context, to string, amounts []domain.AssetAmount,
) error {
	args := m.Called(ctx, to, amounts)
	return args.Error(0)
}

// **** Access control ****

type staticACL struct {
	admins     map[string]bool
	depositors map[string]bool
}

func (a staticACL) IsAdmin(account string) bool {
	return a.admins[account]
}

func (a staticACL) IsDepositor(account string) bool {
	return a.depositors[account]
}
