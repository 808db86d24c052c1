// Package binder implements the Artifact Binder (spec.md §4.5): hybrid
// authenticated encryption that cryptographically binds a ciphertext
// package to one specific document digest, so decrypting with any other
// digest as associated data fails authentication.
package binder

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

const (
	hkdfInfo = "aes-256-gcm-key"
	aesKeyLen = 32
	ivLen     = 12
)

// Package is the emitted artifact: the AES-GCM ciphertext‖tag, the IV used,
// the ephemeral public key, and the resulting artifact digest.
type Package struct {
	CiphertextPackage []byte   // ciphertext ‖ 16-byte tag
	IV                [12]byte
	EphemeralPubKey   []byte // uncompressed point, curve-dependent length
	ArtifactHash      [32]byte
}

// EncryptP256 runs the P-256 ECDH+HKDF+AES-256-GCM binder: generate an
// ephemeral key pair, derive a shared secret with the recipient's public
// key, derive an AES key via HKDF-SHA256, then seal plaintext with
// docDigest as AAD.
func EncryptP256(plaintext []byte, recipientPub *ecdsa.PublicKey, docDigest [32]byte) (*Package, error) {
	curve := ecdh.P256()

	recipientECDH, err := ecdsaPublicKeyToECDH(curve, recipientPub)
	if err != nil {
		return nil, err
	}

	ephemeralPriv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "generate ephemeral P-256 key")
	}

	shared, err := ephemeralPriv.ECDH(recipientECDH)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCryptoMismatch, "compute ECDH shared secret")
	}

	return seal(plaintext, shared, docDigest, ephemeralPriv.PublicKey().Bytes())
}

// DecryptP256 is the exact inverse of EncryptP256. A mismatched docDigest
// fails AES-GCM tag verification and returns AuthFailed, never a plaintext.
func DecryptP256(pkg *Package, recipientPriv *ecdh.PrivateKey, docDigest [32]byte) ([]byte, error) {
	ephemeralPub, err := ecdh.P256().NewPublicKey(pkg.EphemeralPubKey)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "parse ephemeral public key")
	}

	shared, err := recipientPriv.ECDH(ephemeralPub)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCryptoMismatch, "compute ECDH shared secret")
	}

	return open(pkg, shared, docDigest)
}

// EncryptSecp256k1 is the Ethereum-key variant: identical AEAD and AAD
// rule, but the shared secret is derived via secp256k1 scalar
// multiplication (go-ethereum's curve) rather than crypto/ecdh, since
// secp256k1 is not a stdlib-registered ECDH curve.
func EncryptSecp256k1(plaintext []byte, recipientPub *ecdsa.PublicKey, docDigest [32]byte) (*Package, error) {
	curve := ethcrypto.S256()

	ephemeralPriv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "generate ephemeral secp256k1 key")
	}

	sharedX, _ := curve.ScalarMult(recipientPub.X, recipientPub.Y, ephemeralPriv.D.Bytes())
	shared := sharedX.Bytes()

	ephemeralPubBytes := elliptic.Marshal(curve, ephemeralPriv.PublicKey.X, ephemeralPriv.PublicKey.Y)
	return seal(plaintext, shared, docDigest, ephemeralPubBytes)
}

// DecryptSecp256k1 inverts EncryptSecp256k1.
func DecryptSecp256k1(pkg *Package, recipientPriv *ecdsa.PrivateKey, docDigest [32]byte) ([]byte, error) {
	curve := ethcrypto.S256()
	ephX, ephY := elliptic.Unmarshal(curve, pkg.EphemeralPubKey)
	if ephX == nil {
		return nil, apperrors.New(apperrors.CodeMalformedInput, "invalid secp256k1 ephemeral public key encoding")
	}

	sharedX, _ := curve.ScalarMult(ephX, ephY, recipientPriv.D.Bytes())
	shared := sharedX.Bytes()

	return open(pkg, shared, docDigest)
}

func ecdsaPublicKeyToECDH(curve ecdh.Curve, pub *ecdsa.PublicKey) (*ecdh.PublicKey, error) {
	uncompressed := elliptic.Marshal(elliptic.P256(), pub.X, pub.Y)
	ecdhPub, err := curve.NewPublicKey(uncompressed)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "convert ECDSA public key to ECDH form")
	}
	return ecdhPub, nil
}

// seal derives the AES key from the shared secret via HKDF-SHA256 and
// performs AES-256-GCM encryption with docDigest as AAD.
func seal(plaintext, shared []byte, docDigest [32]byte, ephemeralPubBytes []byte) (*Package, error) {
	aesKey := make([]byte, aesKeyLen)
	kdf := hkdf.New(sha256.New, shared, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, aesKey); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "derive AES key via HKDF")
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCryptoMismatch, "create AES cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCryptoMismatch, "create AES-GCM")
	}

	var iv [12]byte
	if _, err := io.ReadFull(rand.Reader, iv[:]); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "generate IV")
	}

	ciphertextPackage := gcm.Seal(nil, iv[:], plaintext, docDigest[:])
	artifactHash := sha256.Sum256(ciphertextPackage)

	return &Package{
		CiphertextPackage: ciphertextPackage,
		IV:                iv,
		EphemeralPubKey:   ephemeralPubBytes,
		ArtifactHash:      artifactHash,
	}, nil
}

// open is seal's inverse: re-derive the AES key, then attempt to open the
// ciphertext package with docDigest as AAD. A mismatched digest (or a
// tampered ciphertext) fails authentication.
func open(pkg *Package, shared []byte, docDigest [32]byte) ([]byte, error) {
	aesKey := make([]byte, aesKeyLen)
	kdf := hkdf.New(sha256.New, shared, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, aesKey); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "derive AES key via HKDF")
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCryptoMismatch, "create AES cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCryptoMismatch, "create AES-GCM")
	}

	plaintext, err := gcm.Open(nil, pkg.IV[:], pkg.CiphertextPackage, docDigest[:])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeAuthFailed, "AES-GCM tag verification failed")
	}
	return plaintext, nil
}
