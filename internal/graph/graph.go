// Package graph 维护概念迁移图：边权表示概念 A 的掌握对概念 B 的参考程度。
// 图是静态配置，进程内以不可变快照持有；迁移只沿出边一跳应用。
package graph

import (
	"fmt"
	"sync/atomic"
)

// Edge 一条带权的有向迁移边
type Edge struct {
	From   string
	To     string
	Weight float64
}

// TransferGraph 邻接表快照，构建后只读
type TransferGraph struct {
	adjacency map[string][]Edge
	edgeCount int
}

func NewTransferGraph(edges []Edge) (*TransferGraph, error) {
	adjacency := make(map[string][]Edge)
	for _, e := range edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("transfer edge with empty concept: %+v", e)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("self transfer edge on concept %s", e.From)
		}
		if e.Weight < 0 || e.Weight > 1 {
			return nil, fmt.Errorf("transfer edge %s->%s weight %v outside [0,1]", e.From, e.To, e.Weight)
		}
		adjacency[e.From] = append(adjacency[e.From], e)
	}
	return &TransferGraph{adjacency: adjacency, edgeCount: len(edges)}, nil
}

// Neighbors 概念的直接出边。返回切片为内部存储，调用方不得修改。
func (g *TransferGraph) Neighbors(conceptID string) []Edge {
	return g.adjacency[conceptID]
}

func (g *TransferGraph) EdgeCount() int {
	return g.edgeCount
}

// Holder 持有当前图快照，支持管理端整图热替换。
type Holder struct {
	current atomic.Pointer[TransferGraph]
}

func NewHolder(g *TransferGraph) *Holder {
	h := &Holder{}
	h.current.Store(g)
	return h
}

func (h *Holder) Get() *TransferGraph {
	return h.current.Load()
}

func (h *Holder) Replace(g *TransferGraph) {
	h.current.Store(g)
}
