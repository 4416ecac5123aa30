package mocks

import "github.com/boardflow/boardflow-api/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier and auth.PasswordHasher
// for testing. The default Compare succeeds when the "hash" is the plaintext
// prefixed with "hashed:", matching the default Hash output.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
	HashFn    func(password string) (string, error)

	CompareErr error
	HashErr    error
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	return m.CompareErr
}

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordVerifier) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}

	if m.HashErr != nil {
		return "", m.HashErr
	}

	return "hashed:" + password, nil
}

var (
	_ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)
	_ auth.PasswordHasher   = (*MockPasswordVerifier)(nil)
)
