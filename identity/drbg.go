package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deterministicReader returns an endless byte stream that is a pure function
// of seed and label. It stands in for the system entropy source wherever a
// cryptographic operation wants randomness but the output has to be
// reproducible: HKDF turns seed+label into an AES key, and the AES-CTR
// keystream is the "random" data.
func deterministicReader(seed []byte, label string) io.Reader {
	kdf := hkdf.New(sha256.New, seed, []byte("protomail.drbg.v1"), []byte(label))

	key := make([]byte, 32)
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		panic(err)
	}
	if _, err := io.ReadFull(kdf, iv); err != nil {
		panic(err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	return &cipher.StreamReader{S: cipher.NewCTR(block, iv), R: zeroReader{}}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
