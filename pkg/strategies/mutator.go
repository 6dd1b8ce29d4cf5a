/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mutator.go
Description: Mutation engine for the Kyra Fuzzer. Implements the random,
deterministic, dictionary, havoc, and splice strategies as free functions
keyed on the strategy tag, over ten primitive byte-string operators. All
nondeterminism flows through the caller-supplied RNG; outputs are clamped
to the configured maximum input size.
*/

package strategies

import (
	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
	"github.com/kleascm/kyra-fuzzer/pkg/rng"
)

// FreshInputMaxSize bounds inputs generated from an empty parent
const FreshInputMaxSize = 1024

// Mutate derives a child input from parent using the given strategy.
// second is consulted only by the splice strategy; iteration only by the
// deterministic strategy; dict only by the dictionary strategy. The result
// is truncated at the tail so its length never exceeds maxInputSize.
func Mutate(parent, second []byte, strategy interfaces.MutationStrategy, iteration uint64, g *rng.RNG, dict [][]byte, maxInputSize int) []byte {
	var out []byte
	switch strategy {
	case interfaces.StrategyDeterministic:
		out = DeterministicMutate(parent, iteration)
	case interfaces.StrategyDictionary:
		out = DictionaryMutate(parent, dict, g)
	case interfaces.StrategyHavoc:
		out = HavocMutate(parent, g)
	case interfaces.StrategySplice:
		out = SpliceMutate(parent, second, g)
	default:
		out = RandomMutate(parent, g)
	}
	if maxInputSize > 0 && len(out) > maxInputSize {
		out = out[:maxInputSize]
	}
	return out
}

// RandomMutate applies one primitive operator chosen uniformly. An empty
// parent yields a fresh random input of length 1 to FreshInputMaxSize.
func RandomMutate(parent []byte, g *rng.RNG) []byte {
	if len(parent) == 0 {
		return g.Bytes(1 + g.Intn(FreshInputMaxSize))
	}

	result := copyOf(parent)
	switch g.Intn(10) {
	case 0:
		bit := g.Intn(len(result) * 8)
		result[bit/8] ^= 1 << (bit % 8)
	case 1:
		result[g.Intn(len(result))] ^= 0xFF
	case 2:
		delta := int8(g.Intn(71) - 35)
		pos := g.Intn(len(result))
		result[pos] = byte(int16(result[pos]) + int16(delta))
	case 3:
		result = insertByte(result, g.Intn(len(result)+1), interesting8[g.Intn(len(interesting8))])
	case 4:
		result = deleteBlock(result, g.Intn(len(result)), 1)
	case 5:
		result[g.Intn(len(result))] = interesting8[g.Intn(len(interesting8))]
	case 6:
		block := g.Bytes(chooseLength(g, len(result)))
		result = insertBlock(result, g.Intn(len(result)+1), block)
	case 7:
		pos := g.Intn(len(result))
		result = deleteBlock(result, pos, chooseLength(g, len(result)-pos))
	case 8:
		pos := g.Intn(len(result))
		result = duplicateBlock(result, pos, chooseLength(g, len(result)-pos))
	case 9:
		result = overwriteInteresting(result, g)
	}
	return result
}

// DeterministicMutate is exhaustive and restartable: offset and operator
// are pure functions of the iteration counter, so the same (parent, i)
// always yields the same child.
func DeterministicMutate(parent []byte, iteration uint64) []byte {
	if len(parent) == 0 {
		return []byte{byte(iteration)}
	}

	result := copyOf(parent)
	pos := int(iteration % uint64(len(result)))
	switch iteration % 4 {
	case 0:
		result[pos] ^= 0x01
	case 1:
		result[pos]++
	case 2:
		result[pos]--
	case 3:
		result[pos] ^= byte(iteration)
	}
	return result
}

// DictionaryMutate splices a uniformly chosen dictionary token into the
// parent by overwrite, insert, or append with equal probability. An empty
// dictionary falls back to RandomMutate.
func DictionaryMutate(parent []byte, dict [][]byte, g *rng.RNG) []byte {
	if len(dict) == 0 {
		return RandomMutate(parent, g)
	}

	token := dict[g.Intn(len(dict))]
	result := copyOf(parent)
	switch g.Intn(3) {
	case 0:
		if len(result) > 0 {
			pos := g.Intn(len(result))
			copy(result[pos:], token)
		}
	case 1:
		result = insertBlock(result, g.Intn(len(result)+1), token)
	case 2:
		result = append(result, token...)
	}
	return result
}

// HavocMutate stacks 1 to 16 random mutations on the same parent
func HavocMutate(parent []byte, g *rng.RNG) []byte {
	result := parent
	for n := 1 + g.Intn(16); n > 0; n-- {
		result = RandomMutate(result, g)
	}
	return result
}

// SpliceMutate concatenates a prefix of p1 with a suffix of p2 at random
// split points. If either parent is empty the other is returned unchanged.
func SpliceMutate(p1, p2 []byte, g *rng.RNG) []byte {
	if len(p1) == 0 {
		return copyOf(p2)
	}
	if len(p2) == 0 {
		return copyOf(p1)
	}

	o1 := g.Intn(len(p1) + 1)
	o2 := g.Intn(len(p2) + 1)
	result := make([]byte, 0, o1+len(p2)-o2)
	result = append(result, p1[:o1]...)
	result = append(result, p2[o2:]...)
	return result
}

func overwriteInteresting(data []byte, g *rng.RNG) []byte {
	switch {
	case len(data) >= 4:
		pos := g.Intn(len(data) - 3)
		v := interesting32[g.Intn(len(interesting32))]
		data[pos] = byte(v)
		data[pos+1] = byte(v >> 8)
		data[pos+2] = byte(v >> 16)
		data[pos+3] = byte(v >> 24)
	case len(data) >= 2:
		pos := g.Intn(len(data) - 1)
		v := interesting16[g.Intn(len(interesting16))]
		data[pos] = byte(v)
		data[pos+1] = byte(v >> 8)
	case len(data) == 1:
		data[0] = interesting8[g.Intn(len(interesting8))]
	}
	return data
}

// chooseLength picks a block length in [1, max(1, size/4)]
func chooseLength(g *rng.RNG, size int) int {
	limit := size / 4
	if limit < 1 {
		limit = 1
	}
	return 1 + g.Intn(limit)
}

func insertByte(data []byte, pos int, value byte) []byte {
	out := make([]byte, 0, len(data)+1)
	out = append(out, data[:pos]...)
	out = append(out, value)
	out = append(out, data[pos:]...)
	return out
}

func insertBlock(data []byte, pos int, block []byte) []byte {
	out := make([]byte, 0, len(data)+len(block))
	out = append(out, data[:pos]...)
	out = append(out, block...)
	out = append(out, data[pos:]...)
	return out
}

func deleteBlock(data []byte, pos, length int) []byte {
	end := pos + length
	if end > len(data) {
		end = len(data)
	}
	out := make([]byte, 0, len(data)-(end-pos))
	out = append(out, data[:pos]...)
	out = append(out, data[end:]...)
	return out
}

func duplicateBlock(data []byte, pos, length int) []byte {
	end := pos + length
	if end > len(data) {
		end = len(data)
	}
	out := make([]byte, 0, len(data)+(end-pos))
	out = append(out, data[:end]...)
	out = append(out, data[pos:end]...)
	out = append(out, data[end:]...)
	return out
}

func copyOf(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
