package kernel

import (
	"context"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/storage"
)

// MockAdminEmail is the admin address test kernels are wired with
const MockAdminEmail = "admin@cardfeed.test"

// MockKernel is a kernel designed for testing: services over a caller
// supplied store, no response cache and mock Google sign-in
type MockKernel struct {
	*Kernel
}

// NewMock wires a kernel over store
func NewMock(store repository.Store) *MockKernel {
	k := New().SetStore(store)
	if err := k.Wire(auth.Options{
		JWTSecret:  []byte("test-secret"),
		AdminEmail: MockAdminEmail,
	}); err != nil {
		panic(err)
	}
	return &MockKernel{Kernel: k}
}

// WithMockImageUploader sets a fake image store
func (m *MockKernel) WithMockImageUploader(uploader storage.ImageUploader) *MockKernel {
	m.SetImageUploader(uploader)
	return m
}

// Clean cleans up test kernels after tests complete
func (m *MockKernel) Clean(ctx context.Context) error {
	return m.Cleanup(ctx)
}
