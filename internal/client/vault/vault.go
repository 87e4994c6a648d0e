// Package vault stores local Matthias accounts as encrypted files, one per
// username, under the application data root.
//
// An account file holds hex(nonce || AES-GCM(json(Account))). The password
// inside is an Argon2i hash and is never decrypted back to plaintext.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/cryptox"
	"github.com/dmitrijs2005/matthias/internal/filex"
	"github.com/google/uuid"
)

// DefaultKey is the record key used when the caller has none of its own.
// It is compiled into every binary, so it only hides account files from
// casual inspection.
var DefaultKey = []byte("matthias-default-account-key-32b")

// Account is the persisted identity of one local user.
type Account struct {
	Username            string   `json:"username"`
	Password            string   `json:"password"`
	UUID                string   `json:"uuid"`
	BookmarkedAddresses []string `json:"bookmarked_addresses"`
}

// AddBookmark appends an address to the bookmark list.
func (a *Account) AddBookmark(address string) {
	a.BookmarkedAddresses = append(a.BookmarkedAddresses, address)
}

// RemoveBookmark deletes the bookmark at i. The caller checks bounds; an
// out-of-range index panics.
func (a *Account) RemoveBookmark(i int) {
	a.BookmarkedAddresses = append(a.BookmarkedAddresses[:i], a.BookmarkedAddresses[i+1:]...)
}

// Vault reads and writes account files under one directory.
type Vault struct {
	root   string
	key    []byte
	params cryptox.Params
}

// New returns a Vault rooted at root. A nil key selects DefaultKey.
func New(root string, key []byte, params cryptox.Params) (*Vault, error) {
	if key == nil {
		key = DefaultKey
	}
	if len(key) != cryptox.KeySize {
		return nil, cryptox.ErrKeySize
	}
	return &Vault{root: root, key: key, params: params}, nil
}

// Path returns the account file location for username.
func (v *Vault) Path(username string) string {
	return filepath.Join(v.root, username+common.AccountFileExt)
}

func validUsername(username string) bool {
	return username != "" && !strings.ContainsAny(username, " @/\\")
}

// Register creates the account file for username. The file must not exist yet.
func (v *Vault) Register(username string, password []byte) (*Account, error) {
	if !validUsername(username) {
		return nil, common.ErrInvalidUsername
	}
	if err := os.MkdirAll(v.root, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", v.root, err)
	}

	a := &Account{
		Username:            username,
		Password:            cryptox.HashPassword(password, v.params),
		UUID:                uuid.NewString(),
		BookmarkedAddresses: []string{},
	}

	data, err := cryptox.EncryptEntry(a, v.key)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(v.Path(username), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, common.ErrAlreadyExists
		}
		return nil, err
	}
	if _, err := f.WriteString(data); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return a, nil
}

// Login opens the account file for username and checks password against
// the stored hash.
func (v *Vault) Login(username string, password []byte) (*Account, error) {
	if !validUsername(username) {
		return nil, common.ErrNotFound
	}

	data, err := os.ReadFile(v.Path(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	var a Account
	if err := cryptox.DecryptEntry(string(data), v.key, &a); err != nil {
		if errors.Is(err, common.ErrDecrypt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupt, err)
	}

	if a.Username != username {
		return nil, common.ErrCorrupt
	}
	if !cryptox.VerifyPassword(password, a.Password) {
		return nil, common.ErrInvalidPassword
	}
	if a.BookmarkedAddresses == nil {
		a.BookmarkedAddresses = []string{}
	}
	return &a, nil
}

// Save re-encrypts the whole account and overwrites its file.
func (v *Vault) Save(a *Account) error {
	if !validUsername(a.Username) {
		return common.ErrInvalidUsername
	}
	data, err := cryptox.EncryptEntry(a, v.key)
	if err != nil {
		return err
	}
	return filex.WriteAtomic(v.Path(a.Username), []byte(data), 0o600)
}
