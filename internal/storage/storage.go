// Package storage is the object-storage collaborator: a local-disk store
// with the {userId}/{timestamp}_{filename} path layout and HMAC-signed,
// time-limited download URLs.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPath      = errors.New("invalid object path")
	ErrSignatureInvalid = errors.New("signature mismatch")
	ErrLinkExpired      = errors.New("signed link expired")
)

type Store struct {
	root    string
	baseURL string
	secret  []byte
}

func New(root, baseURL string, secret []byte) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/"), secret: secret}, nil
}

// CompanyDocumentPath builds {userId}/{timestamp}_{filename}.
func CompanyDocumentPath(userID, filename string) string {
	return fmt.Sprintf("%s/%d_%s", userID, time.Now().UnixMilli(), sanitizeName(filename))
}

// AttachmentPath builds {userId}/{conversationId}/{timestamp}_{filename}.
func AttachmentPath(userID, conversationID, filename string) string {
	return fmt.Sprintf("%s/%s/%d_%s", userID, conversationID, time.Now().UnixMilli(), sanitizeName(filename))
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '#', '%':
			return '_'
		}
		return r
	}, name)
}

func (s *Store) resolve(objectPath string) (string, error) {
	for _, part := range strings.Split(objectPath, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Save writes the object and returns its size.
func (s *Store) Save(objectPath string, r io.Reader) (int64, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create object: %w", err)
	}
	defer f.Close()
	n, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write object: %w", err)
	}
	return n, nil
}

// Open returns a reader over a stored object.
func (s *Store) Open(objectPath string) (io.ReadCloser, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// SignedURL issues a pre-authorized download link that expires after ttl.
func (s *Store) SignedURL(objectPath string, ttl time.Duration) string {
	exp := time.Now().Add(ttl).Unix()
	sig := s.sign(objectPath, exp)
	return fmt.Sprintf("%s/files/%s?exp=%d&sig=%s", s.baseURL, objectPath, exp, sig)
}

// Verify checks a signed link's signature and expiry.
func (s *Store) Verify(objectPath string, exp int64, sig string) error {
	want := s.sign(objectPath, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrSignatureInvalid
	}
	if time.Now().Unix() > exp {
		return ErrLinkExpired
	}
	return nil
}

func (s *Store) sign(objectPath string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	io.WriteString(mac, objectPath)
	io.WriteString(mac, "|")
	io.WriteString(mac, strconv.FormatInt(exp, 10))
	return hex.EncodeToString(mac.Sum(nil))
}
