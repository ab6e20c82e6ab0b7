package services

import (
	"cmp"
	"slices"

	"hypoforum/internal/models"
)

// CommentNode is a comment with its direct replies in creation order.
type CommentNode struct {
	Comment  models.Comment
	Children []*CommentNode
}

// BuildCommentTree nests a thread's flat comment list by parent id.
// A comment becomes a root when its parent is not in the list or does not
// sort before it (self-parented, or corrupt links such as 1->2->1). Links
// therefore always point to earlier comments, so the result is a forest and
// every input comment appears exactly once. The input slice is not modified.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	sorted := slices.Clone(comments)
	slices.SortStableFunc(sorted, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	// 第一遍：建立 id -> 节点，记录排序位置
	nodes := make(map[uint]*CommentNode, len(sorted))
	rank := make(map[uint]int, len(sorted))
	for i := range sorted {
		nodes[sorted[i].ID] = &CommentNode{Comment: sorted[i]}
		rank[sorted[i].ID] = i
	}

	// 第二遍：按创建顺序挂到更早的父节点，其余提升为根
	roots := make([]*CommentNode, 0)
	for i := range sorted {
		node := nodes[sorted[i].ID]
		if pid := sorted[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok && rank[*pid] < i {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Walk visits every node depth-first, parents before children.
func Walk(nodes []*CommentNode, fn func(n *CommentNode, depth int)) {
	var visit func([]*CommentNode, int)
	visit = func(ns []*CommentNode, depth int) {
		for _, n := range ns {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(nodes, 0)
}
