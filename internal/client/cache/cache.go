// Package cache keeps media bytes fetched from servers on local disk, one
// directory per server:
//
//	<root>/Client/<base64url(address)>/Images/<index>
//	<root>/Client/<base64url(address)>/Audios/<index>
package cache

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/filex"
	"github.com/dmitrijs2005/matthias/internal/protocol"
)

const (
	clientDir = "Client"
	imagesDir = "Images"
	audiosDir = "Audios"
)

// Cache is the media store for one application root.
type Cache struct {
	root string
}

func New(root string) *Cache {
	return &Cache{root: root}
}

// EncodeAddress turns a server address into its directory name.
func EncodeAddress(address string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(address))
}

// DecodeAddress reverses EncodeAddress.
func DecodeAddress(dir string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}
	return string(b), nil
}

// ServerDir returns the cache directory of one server.
func (c *Cache) ServerDir(address string) string {
	return filepath.Join(c.root, clientDir, EncodeAddress(address))
}

func (c *Cache) ImagePath(address string, index int) string {
	return filepath.Join(c.ServerDir(address), imagesDir, strconv.Itoa(index))
}

func (c *Cache) AudioPath(address string, index int) string {
	return filepath.Join(c.ServerDir(address), audiosDir, strconv.Itoa(index))
}

// SaveImage writes an image reply and returns where it landed.
func (c *Cache) SaveImage(address string, r protocol.ImageReply) (string, error) {
	p := c.ImagePath(address, r.Index)
	return p, writeFile(p, r.Bytes)
}

// SaveAudio writes an audio reply and returns where it landed.
func (c *Cache) SaveAudio(address string, r protocol.AudioReply) (string, error) {
	p := c.AudioPath(address, r.Index)
	return p, writeFile(p, r.Bytes)
}

// LoadImage returns cached image bytes or common.ErrNotFound.
func (c *Cache) LoadImage(address string, index int) ([]byte, error) {
	return readFile(c.ImagePath(address, index))
}

// LoadAudio returns cached audio bytes or common.ErrNotFound.
func (c *Cache) LoadAudio(address string, index int) ([]byte, error) {
	return readFile(c.AudioPath(address, index))
}

// Servers lists the addresses that have a cache directory. Entries whose
// names do not decode are skipped.
func (c *Cache) Servers() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.root, clientDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		addr, err := DecodeAddress(e.Name())
		if err != nil {
			continue
		}
		out = append(out, addr)
	}
	return out, nil
}

// SaveFile writes a file reply to dir under the name the uploader gave it.
// An existing file with that name is overwritten.
func SaveFile(dir string, r protocol.FileReply) (string, error) {
	name := filepath.Base(r.FileName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: unusable file name %q", common.ErrInvalidFormat, r.FileName)
	}
	p := filepath.Join(dir, name)
	return p, writeFile(p, r.Bytes)
}

func writeFile(path string, data []byte) error {
	return filex.WriteAtomic(path, data, 0o600)
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrNotFound
	}
	return b, err
}
