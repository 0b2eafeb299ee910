package bsdiff

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQsufsort_SortsSuffixesLexicographically(t *testing.T) {
	buf := []byte("banana")
	I := qsufsort(buf)

	var suffixes []string
	for _, pos := range I[1:] {
		if pos >= 0 && pos < len(buf) {
			suffixes = append(suffixes, string(buf[pos:]))
		}
	}
	for i := 1; i < len(suffixes); i++ {
		require.LessOrEqual(t, suffixes[i-1], suffixes[i])
	}
}

func TestSuffixArray_FindsLongestMatch(t *testing.T) {
	obuf := []byte("the quick brown fox jumps over the lazy dog")
	sa := newSuffixArray(obuf)

	start, length := sa.LongestSubstringMatch([]byte("brown fox runs"))
	require.Equal(t, 10, length) // "brown fox " (trailing space matches too) then mismatch at 'j'/'r'
	require.Equal(t, "brown fox ", string(obuf[start:start+length]))
}

func TestSuffixArray_NoMatch(t *testing.T) {
	obuf := []byte("aaaaaaaa")
	sa := newSuffixArray(obuf)

	_, length := sa.LongestSubstringMatch([]byte("xyz"))
	require.Equal(t, 0, length)
}

func TestSuffixArray_EmptyBuffer(t *testing.T) {
	sa := newSuffixArray(nil)
	start, length := sa.LongestSubstringMatch([]byte("anything"))
	require.Equal(t, 0, start)
	require.Equal(t, 0, length)
}

func TestPartitionedSuffixArray_MatchesSinglePartitionOnSimpleCase(t *testing.T) {
	obuf := []byte("the quick brown fox jumps over the lazy dog, the quick brown fox again")

	one := NewPartitionedSuffixArray(obuf, 1)
	_, lenOne := one.LongestSubstringMatch([]byte("the quick brown fox"))
	require.Equal(t, len("the quick brown fox"), lenOne)

	two := NewPartitionedSuffixArray(obuf, 2)
	_, lenTwo := two.LongestSubstringMatch([]byte("the quick brown fox"))
	require.Equal(t, lenOne, lenTwo)
}

func TestPartitionedSuffixArray_MorePartitionsNeverFindsLongerMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	obuf := make([]byte, 2048)
	rng.Read(obuf)

	query := append([]byte(nil), obuf[1000:1050]...)

	one := NewPartitionedSuffixArray(obuf, 1)
	four := NewPartitionedSuffixArray(obuf, 4)

	_, lenOne := one.LongestSubstringMatch(query)
	_, lenFour := four.LongestSubstringMatch(query)

	require.GreaterOrEqual(t, lenOne, lenFour)
}

func TestPartitionedSuffixArray_ClampsPartitionsToBufferSize(t *testing.T) {
	obuf := []byte("abc")
	psa := NewPartitionedSuffixArray(obuf, 100)
	require.Len(t, psa.partitions, 1)
}
