package pdf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PasswordCredentials contains the passwords for a PDF file.
type PasswordCredentials struct {
	UserPassword  string `json:"user_password,omitempty" yaml:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty" yaml:"owner_password,omitempty"`
}

// Empty reports whether no password is set.
func (c *PasswordCredentials) Empty() bool {
	return c == nil || (c.UserPassword == "" && c.OwnerPassword == "")
}

// PasswordHandler decrypts protected documents into temporary copies.
type PasswordHandler struct {
	creds *PasswordCredentials

	pageCount func(path string) (int, error)
	decrypt   func(in, out string, conf *model.Configuration) error
}

// NewPasswordHandler creates a handler that tries creds on encrypted files.
func NewPasswordHandler(creds *PasswordCredentials) *PasswordHandler {
	return &PasswordHandler{
		creds:     creds,
		pageCount: api.PageCountFile,
		decrypt:   api.DecryptFile,
	}
}

// IsEncrypted checks whether a PDF cannot be opened without a password.
func (h *PasswordHandler) IsEncrypted(filename string) (bool, error) {
	if _, err := h.pageCount(filename); err != nil {
		if IsPasswordError(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
	}
	return false, nil
}

// Prepare returns a path the rest of the pipeline can read. A file that is
// not encrypted, or that cannot be parsed at all, is returned unchanged and
// later stages report any read failure. An encrypted file fails with
// ErrEncrypted when no credentials are configured; otherwise it is decrypted
// into a temp file that the returned cleanup removes.
func (h *PasswordHandler) Prepare(filename string) (string, func(), error) {
	noop := func() {}

	encrypted, err := h.IsEncrypted(filename)
	if err != nil || !encrypted {
		return filename, noop, nil //nolint:nilerr // parse failures surface in the extractor
	}
	if h.creds.Empty() {
		return "", noop, fmt.Errorf("%w: no password configured", ErrEncrypted)
	}

	tempFile, err := os.CreateTemp("", "decrypted-*.pdf")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempName := tempFile.Name()
	_ = tempFile.Close()
	cleanup := func() { _ = os.Remove(tempName) }

	conf := model.NewDefaultConfiguration()
	conf.UserPW = h.creds.UserPassword
	conf.OwnerPW = h.creds.OwnerPassword
	if err := h.decrypt(filename, tempName, conf); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%w: %w", ErrEncrypted, err)
	}
	return tempName, cleanup, nil
}

// IsPasswordError checks if an error is related to password/encryption issues.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEncrypted) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, keyword := range []string{"password", "encrypted", "decrypt"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}
