package binder

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// ecdhToECDSAPublic recovers X/Y coordinates from an ecdh.PublicKey's
// uncompressed point encoding, since crypto/ecdh deliberately doesn't
// expose them directly.
func ecdhToECDSAPublic(t *testing.T, priv *ecdh.PrivateKey) *ecdsa.PublicKey {
	t.Helper()
	x, y := elliptic.Unmarshal(elliptic.P256(), priv.PublicKey().Bytes())
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
}

func TestEncryptDecryptP256_RoundTrip(t *testing.T) {
	recipientPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate recipient key: %v", err)
	}
	recipientPub := ecdhToECDSAPublic(t, recipientPriv)

	docDigest := sha256.Sum256([]byte("document byte range"))
	plaintext := []byte("artifact payload")

	pkg, err := EncryptP256(plaintext, recipientPub, docDigest)
	if err != nil {
		t.Fatalf("EncryptP256 failed: %v", err)
	}

	got, err := DecryptP256(pkg, recipientPriv, docDigest)
	if err != nil {
		t.Fatalf("DecryptP256 failed: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("round-trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptP256_WrongAADFailsAuth(t *testing.T) {
	recipientPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate recipient key: %v", err)
	}
	recipientPub := ecdhToECDSAPublic(t, recipientPriv)

	docDigest := sha256.Sum256([]byte("document byte range"))
	otherDigest := sha256.Sum256([]byte("a different document"))

	pkg, err := EncryptP256([]byte("artifact payload"), recipientPub, docDigest)
	if err != nil {
		t.Fatalf("EncryptP256 failed: %v", err)
	}

	_, err = DecryptP256(pkg, recipientPriv, otherDigest)
	if err == nil {
		t.Fatalf("expected AuthFailed error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeAuthFailed) {
		t.Errorf("expected AuthFailed code, got %v", err)
	}
}

func TestEncryptDecryptSecp256k1_RoundTrip(t *testing.T) {
	recipientPriv, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate recipient key: %v", err)
	}

	docDigest := sha256.Sum256([]byte("document byte range"))
	plaintext := []byte("artifact payload")

	pkg, err := EncryptSecp256k1(plaintext, &recipientPriv.PublicKey, docDigest)
	if err != nil {
		t.Fatalf("EncryptSecp256k1 failed: %v", err)
	}

	got, err := DecryptSecp256k1(pkg, recipientPriv, docDigest)
	if err != nil {
		t.Fatalf("DecryptSecp256k1 failed: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("round-trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptSecp256k1_WrongAADFailsAuth(t *testing.T) {
	recipientPriv, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate recipient key: %v", err)
	}

	docDigest := sha256.Sum256([]byte("document byte range"))
	otherDigest := sha256.Sum256([]byte("a different document"))

	pkg, err := EncryptSecp256k1([]byte("artifact payload"), &recipientPriv.PublicKey, docDigest)
	if err != nil {
		t.Fatalf("EncryptSecp256k1 failed: %v", err)
	}

	_, err = DecryptSecp256k1(pkg, recipientPriv, otherDigest)
	if err == nil {
		t.Fatalf("expected AuthFailed error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeAuthFailed) {
		t.Errorf("expected AuthFailed code, got %v", err)
	}
}
