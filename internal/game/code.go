package game

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"
)

// CodeAlphabet leaves out characters that are easy to confuse (0/O, 1/I).
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type CodeGenerator interface {
	Generate() string
}

// RandomCodes draws codes of length N from CodeAlphabet. Reader defaults to
// crypto/rand. A read failure yields "", which Create treats as unusable.
type RandomCodes struct {
	N      int
	Reader io.Reader
}

func (rc RandomCodes) Generate() string {
	n := rc.N
	if n < 4 {
		n = 4
	}
	if n > 6 {
		n = 6
	}
	src := rc.Reader
	if src == nil {
		src = rand.Reader
	}
	max := big.NewInt(int64(len(CodeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		ix, err := rand.Int(src, max)
		if err != nil {
			return ""
		}
		b[i] = CodeAlphabet[ix.Int64()]
	}
	return string(b)
}

// CanonicalCode trims and upper-cases user input.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
