package idgen

import "sync/atomic"

// Sequence 进程内自增生成器，内存仓储与测试使用
type Sequence struct {
	n atomic.Int64
}

// NewSequence 从 start 之后开始计数
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

func (s *Sequence) NextID() (int64, error) {
	return s.n.Add(1), nil
}
