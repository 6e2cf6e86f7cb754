// Package commands contains the traversal and collection logic behind the snapshot outputs.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	// warningSkipSubdirMessage is logged when a subdirectory cannot be listed.
	warningSkipSubdirMessage = "skipping unreadable directory"
	// debugExcludedEntryMessage is logged when an entry is pruned by the exclusion predicate.
	debugExcludedEntryMessage = "excluded entry"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadRootFormat is used when the root directory itself cannot be listed.
	errorReadRootFormat = "reading root directory %s: %w"
)

// TreeBuilder builds the project tree using the configured exclusions.
type TreeBuilder struct {
	Exclusions *exclusion.Matcher
	Logger     *zap.Logger
}

// GetTreeData lists rootDirectoryPath recursively and returns its root node.
// Excluded entries are dropped before they are listed and excluded directories
// are never opened. A root that cannot be listed is an error; any deeper directory
// that cannot be listed is logged and kept as an empty node.
func (treeBuilder *TreeBuilder) GetTreeData(rootDirectoryPath string) (*types.TreeNode, error) {
	absoluteRootDirPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	rootNode := &types.TreeNode{
		Path:         absoluteRootDirPath,
		RelativePath: ".",
		Name:         filepath.Base(absoluteRootDirPath),
		Type:         types.NodeTypeDirectory,
	}
	children, buildError := treeBuilder.buildTreeNodes(absoluteRootDirPath, absoluteRootDirPath)
	if buildError != nil {
		return nil, fmt.Errorf(errorReadRootFormat, rootDirectoryPath, buildError)
	}
	rootNode.Children = children
	return rootNode, nil
}

// buildTreeNodes recursively builds sorted child nodes for one directory.
func (treeBuilder *TreeBuilder) buildTreeNodes(currentDirectoryPath string, rootDirectoryPath string) ([]*types.TreeNode, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}

	nodes := make([]*types.TreeNode, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if treeBuilder.Exclusions.Excludes(relativeChildPath) {
			treeBuilder.logger().Debug(debugExcludedEntryMessage, zap.String("path", relativeChildPath))
			continue
		}
		node := &types.TreeNode{
			Path:         childPath,
			RelativePath: relativeChildPath,
			Name:         directoryEntry.Name(),
			Type:         types.NodeTypeFile,
		}
		if directoryEntry.IsDir() {
			node.Type = types.NodeTypeDirectory
		}
		nodes = append(nodes, node)
	}
	SortTreeNodes(nodes)

	for _, node := range nodes {
		if node.Type != types.NodeTypeDirectory {
			continue
		}
		childNodes, buildError := treeBuilder.buildTreeNodes(node.Path, rootDirectoryPath)
		if buildError != nil {
			treeBuilder.logger().Warn(warningSkipSubdirMessage, zap.String("path", node.RelativePath), zap.Error(buildError))
			continue
		}
		node.Children = childNodes
	}
	return nodes, nil
}

// SortTreeNodes orders sibling nodes with directories first, then by
// case-insensitive name, then by exact name so the order is total.
func SortTreeNodes(nodes []*types.TreeNode) {
	sort.SliceStable(nodes, func(left, right int) bool {
		leftIsFile := nodes[left].Type != types.NodeTypeDirectory
		rightIsFile := nodes[right].Type != types.NodeTypeDirectory
		if leftIsFile != rightIsFile {
			return !leftIsFile
		}
		leftName := strings.ToLower(nodes[left].Name)
		rightName := strings.ToLower(nodes[right].Name)
		if leftName != rightName {
			return leftName < rightName
		}
		return nodes[left].Name < nodes[right].Name
	})
}

func (treeBuilder *TreeBuilder) logger() *zap.Logger {
	if treeBuilder.Logger == nil {
		return zap.NewNop()
	}
	return treeBuilder.Logger
}
