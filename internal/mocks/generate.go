// Package mocks provides mock implementations for testing the session layer.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the marketplace gateway port. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	gw := mocks.NewMockGateway(ctrl)
//	gw.EXPECT().CheckStatus(gomock.Any(), gomock.Any()).Return(result, nil)
package mocks

// Generate mock for Gateway interface from internal/ports package.
// This creates MockGateway with methods for all Gateway interface methods:
// CheckStatus, Login, Signup, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=gateway_mock.go github.com/carhub/carhub-web/internal/ports Gateway
