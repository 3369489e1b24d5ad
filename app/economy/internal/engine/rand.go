package engine

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync/atomic"
)

// RandomSource 抽取使用的随机源
type RandomSource interface {
	// Float64 返回 [0, 1) 均匀分布
	Float64() float64
	// IntN 返回 [0, n) 均匀分布
	IntN(n int) int
}

// SourceFactory 为每次抽取提供独立的随机源，避免并发共享可变状态
type SourceFactory interface {
	NewSource() RandomSource
}

// SourceFactoryFunc 函数适配器
type SourceFactoryFunc func() RandomSource

func (f SourceFactoryFunc) NewSource() RandomSource { return f() }

// NewSeededSource 可复现的随机源
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, 0))
}

// CryptoSourceFactory 每次以 crypto/rand 种子创建 ChaCha8 随机源
func CryptoSourceFactory() SourceFactory {
	return SourceFactoryFunc(func() RandomSource {
		var seed [32]byte
		if _, err := cryptorand.Read(seed[:]); err != nil {
			binary.LittleEndian.PutUint64(seed[:], rand.Uint64())
		}
		return rand.New(rand.NewChaCha8(seed))
	})
}

// SeededSourceFactory 第 i 次调用返回 PCG(seed, i)，调用顺序固定时结果可复现
func SeededSourceFactory(seed uint64) SourceFactory {
	var n atomic.Uint64
	return SourceFactoryFunc(func() RandomSource {
		return rand.New(rand.NewPCG(seed, n.Add(1)))
	})
}

// FixedSource 按顺序循环返回预设值，用于强制结果
type FixedSource struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

func (s *FixedSource) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

// IntN 预设值对 n 取模
func (s *FixedSource) IntN(n int) int {
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)]
	s.ii++
	return ((v % n) + n) % n
}

// FixedFactory 每次返回同一个 FixedSource
func FixedFactory(src *FixedSource) SourceFactory {
	return SourceFactoryFunc(func() RandomSource { return src })
}
