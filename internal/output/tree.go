// Package output renders the tree and snapshot documents.
package output

import (
	"io"
	"strings"

	"github.com/temirov/reposnap/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	lineSeparator       = "\n"
)

// RenderTree returns the tree diagram for the children of root, one line per
// entry joined by newlines without a trailing newline. The root itself is not
// printed, so an empty directory renders as the empty string.
func RenderTree(root *types.TreeNode) string {
	if root == nil {
		return ""
	}
	var lines []string
	appendTreeLines(&lines, root.Children, "")
	return strings.Join(lines, lineSeparator)
}

// WriteTree writes RenderTree output to writer.
func WriteTree(writer io.Writer, root *types.TreeNode) error {
	_, writeError := io.WriteString(writer, RenderTree(root))
	return writeError
}

func appendTreeLines(lines *[]string, nodes []*types.TreeNode, prefix string) {
	for index, node := range nodes {
		if node == nil {
			continue
		}
		isLast := index == len(nodes)-1
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		*lines = append(*lines, prefix+connector+node.Name)
		if node.Type == types.NodeTypeDirectory {
			appendTreeLines(lines, node.Children, childPrefix)
		}
	}
}
