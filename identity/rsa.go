package identity

import (
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"
)

// deterministicRSAKey builds an RSA key whose primes are drawn from r.
// crypto/rsa.GenerateKey deliberately perturbs its reader to defeat exactly
// this kind of reproducibility, so the prime search is done here instead:
// same stream, same key, every run.
func deterministicRSAKey(bits int, r io.Reader) (*rsa.PrivateKey, error) {
	e := big.NewInt(65537)
	one := big.NewInt(1)

	for {
		p, err := deterministicPrime(bits/2, r)
		if err != nil {
			return nil, err
		}
		q, err := deterministicPrime(bits/2, r)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		pm1 := new(big.Int).Sub(p, one)
		qm1 := new(big.Int).Sub(q, one)
		phi := new(big.Int).Mul(pm1, qm1)

		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			continue
		}

		key := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		key.Precompute()
		if err := key.Validate(); err != nil {
			continue
		}
		return key, nil
	}
}

// deterministicPrime reads fixed-width candidates from r until one passes
// Miller-Rabin. The top two bits are forced so the product of two primes
// keeps its full width, the low bit so candidates are odd.
func deterministicPrime(bits int, r io.Reader) (*big.Int, error) {
	if bits%8 != 0 {
		return nil, fmt.Errorf("prime width must be a whole number of bytes, got %d bits", bits)
	}
	buf := make([]byte, bits/8)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("prime candidate: %w", err)
		}
		buf[0] |= 0xc0
		buf[len(buf)-1] |= 0x01

		c := new(big.Int).SetBytes(buf)
		if c.ProbablyPrime(64) {
			return c, nil
		}
	}
}
