package storage

import (
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	s, err := New(t.TempDir(), "http://localhost:8080", []byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Save("u1/123_report.pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	f, err := s.Open("u1/123_report.pdf")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestPathTraversalRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("../outside.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Open("u1/../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestSanitizedPathLayout(t *testing.T) {
	p := CompanyDocumentPath("user-1", "Q3 report: final?.pdf")
	assert.True(t, strings.HasPrefix(p, "user-1/"), p)
	assert.NotContains(t, p, ":")
	assert.NotContains(t, p, "?")

	p = AttachmentPath("user-1", "conv-9", "notes.txt")
	assert.True(t, strings.HasPrefix(p, "user-1/conv-9/"), p)
	assert.True(t, strings.HasSuffix(p, "_notes.txt"), p)
}

func TestSignedURLRoundTrip(t *testing.T) {
	s := newTestStore(t)

	link := s.SignedURL("u1/123_report.pdf", time.Hour)
	u, err := url.Parse(link)
	require.NoError(t, err)

	objectPath := strings.TrimPrefix(u.Path, "/files/")
	exp, err := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	require.NoError(t, err)

	assert.NoError(t, s.Verify(objectPath, exp, u.Query().Get("sig")))
}

func TestVerify_TamperedSignature(t *testing.T) {
	s := newTestStore(t)

	exp := time.Now().Add(time.Hour).Unix()
	err := s.Verify("u1/123_report.pdf", exp, "deadbeef")
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

// Signing a different path must not authorize this one.
func TestVerify_PathMismatch(t *testing.T) {
	s := newTestStore(t)

	link := s.SignedURL("u1/a.txt", time.Hour)
	u, err := url.Parse(link)
	require.NoError(t, err)
	exp, _ := strconv.ParseInt(u.Query().Get("exp"), 10, 64)

	err = s.Verify("u1/b.txt", exp, u.Query().Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_Expired(t *testing.T) {
	s := newTestStore(t)

	exp := time.Now().Add(-time.Minute).Unix()
	sig := s.sign("u1/a.txt", exp)

	err := s.Verify("u1/a.txt", exp, sig)
	assert.ErrorIs(t, err, ErrLinkExpired)
}

// Changing the expiry without re-signing invalidates the signature, so an
// expired link cannot be revived by editing exp.
func TestVerify_ExpiryIsSigned(t *testing.T) {
	s := newTestStore(t)

	link := s.SignedURL("u1/a.txt", -time.Minute)
	u, err := url.Parse(link)
	require.NoError(t, err)

	fresh := time.Now().Add(time.Hour).Unix()
	err = s.Verify("u1/a.txt", fresh, u.Query().Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestDifferentSecretsDisagree(t *testing.T) {
	s1, err := New(t.TempDir(), "http://localhost", []byte("secret-a"))
	require.NoError(t, err)
	s2, err := New(t.TempDir(), "http://localhost", []byte("secret-b"))
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour).Unix()
	sig := s1.sign("u1/a.txt", exp)
	assert.ErrorIs(t, s2.Verify("u1/a.txt", exp, sig), ErrSignatureInvalid)
}
