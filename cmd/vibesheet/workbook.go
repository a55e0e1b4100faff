package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgomes/vibesheet/formula"
	"gopkg.in/yaml.v3"
)

// workbookCell is one entry of a workbook's cells mapping, kept alongside its
// YAML node so fmt can rewrite the input in place.
type workbookCell struct {
	Name  string
	Input string
	node  *yaml.Node
}

// workbook is a YAML document of the form
//
//	cells:
//	  A0: 1
//	  B0: =A0 * 2
type workbook struct {
	Path  string
	Cells []workbookCell
	doc   yaml.Node
}

func readWorkbook(path string) (*workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	wb, err := parseWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	wb.Path = path
	return wb, nil
}

func parseWorkbook(data []byte) (*workbook, error) {
	wb := &workbook{}
	if err := yaml.Unmarshal(data, &wb.doc); err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}
	if len(wb.doc.Content) == 0 {
		return wb, nil
	}
	root := wb.doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("workbook must be a mapping, got %s", nodeKind(root))
	}
	cells := mappingValue(root, "cells")
	if cells == nil {
		return wb, nil
	}
	if cells.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("cells must be a mapping, got %s", nodeKind(cells))
	}
	seen := make(map[string]int)
	for i := 0; i+1 < len(cells.Content); i += 2 {
		key, value := cells.Content[i], cells.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: cell %s must hold a scalar", value.Line, key.Value)
		}
		name := strings.ToUpper(strings.TrimSpace(key.Value))
		if line, dup := seen[name]; dup {
			return nil, fmt.Errorf("line %d: cell %s already defined on line %d", key.Line, name, line)
		}
		seen[name] = key.Line
		wb.Cells = append(wb.Cells, workbookCell{Name: name, Input: value.Value, node: value})
	}
	return wb, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// load writes every cell into s in document order.
func (wb *workbook) load(s *formula.Sheet) error {
	for _, c := range wb.Cells {
		cell, err := s.CellByName(c.Name)
		if err != nil {
			return fmt.Errorf("cell %s: %w", c.Name, err)
		}
		if err := s.Set(cell, c.Input); err != nil {
			return fmt.Errorf("cell %s: %w", c.Name, err)
		}
	}
	return nil
}

// encode renders the workbook back to YAML, comments included.
func (wb *workbook) encode() ([]byte, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(&wb.doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
