package assets

import (
	"crypto/md5"
	"encoding/base64"
)

// digest is the 16 byte identity hash of a requestable.
type digest [md5.Size]byte

func contentDigest(content string) digest {
	return md5.Sum([]byte(content))
}

// xorDigests combines member digests into a bundle digest.
func xorDigests(ds []digest) digest {
	var out digest
	for _, d := range ds {
		for i := range out {
			out[i] ^= d[i]
		}
	}
	return out
}

func (d digest) String() string {
	return base64.RawURLEncoding.EncodeToString(d[:])
}
