package utils

import (
	"crypto/sha256"
)

const encodedLen = 20
const encoding = "0123456789abcdefghijklmnopqrstuv"

// DeterministicID derives a 20 character identifier from seed. The same seed
// always yields the same identifier, there is no clock or counter involved,
// so anything named by it (Message-IDs, MIME boundaries) is stable across
// runs.
func DeterministicID(seed string) string {
	sum := sha256.Sum256([]byte(seed))

	text := make([]byte, encodedLen)
	encode(text, sum[:12])
	return string(text)
}

// Boundary derives a MIME boundary from the owning Message-ID and a label.
// Distinct labels yield distinct boundaries, so nested multiparts within the
// same message never collide.
func Boundary(messageID, label string) string {
	return DeterministicID("boundary:" + label + ":" + messageID)
}

func encode(dst, id []byte) {
	_ = dst[19]
	_ = id[11]

	dst[19] = encoding[(id[11]<<4)&0x1F]
	dst[18] = encoding[(id[11]>>1)&0x1F]
	dst[17] = encoding[(id[11]>>6)|(id[10]<<2)&0x1F]
	dst[16] = encoding[id[10]>>3]
	dst[15] = encoding[id[9]&0x1F]
	dst[14] = encoding[(id[9]>>5)|(id[8]<<3)&0x1F]
	dst[13] = encoding[(id[8]>>2)&0x1F]
	dst[12] = encoding[id[8]>>7|(id[7]<<1)&0x1F]
	dst[11] = encoding[(id[7]>>4)|(id[6]<<4)&0x1F]
	dst[10] = encoding[(id[6]>>1)&0x1F]
	dst[9] = encoding[(id[6]>>6)|(id[5]<<2)&0x1F]
	dst[8] = encoding[id[5]>>3]
	dst[7] = encoding[id[4]&0x1F]
	dst[6] = encoding[id[4]>>5|(id[3]<<3)&0x1F]
	dst[5] = encoding[(id[3]>>2)&0x1F]
	dst[4] = encoding[id[3]>>7|(id[2]<<1)&0x1F]
	dst[3] = encoding[(id[2]>>4)|(id[1]<<4)&0x1F]
	dst[2] = encoding[(id[1]>>1)&0x1F]
	dst[1] = encoding[(id[1]>>6)|(id[0]<<2)&0x1F]
	dst[0] = encoding[id[0]>>3]
}
