package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// GroupKeywords lists the aliases that mark a line as switching to a group.
type GroupKeywords struct {
	ID      model.GroupID `yaml:"id" mapstructure:"id"`
	Aliases []string      `yaml:"aliases" mapstructure:"aliases"`
}

// GroupTable is an ordered set of group keywords. Earlier groups win when
// a line contains aliases of several groups.
type GroupTable []GroupKeywords

// DefaultGroupTable returns the stores known out of the box.
func DefaultGroupTable() GroupTable {
	return GroupTable{
		{ID: "MINE", Aliases: []string{"マイン", "まいん", "MINE"}},
		{ID: "M", Aliases: []string{"M", "えむ", "エム"}},
	}
}

// Match reports the first group with an alias contained in line.
func (t GroupTable) Match(line string) (model.GroupID, bool) {
	for _, g := range t {
		for _, alias := range g.Aliases {
			if strings.Contains(line, alias) {
				return g.ID, true
			}
		}
	}
	return "", false
}

// Validate checks that every group has an id and usable aliases.
func (t GroupTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no groups defined", common.ErrInvalidGroupMap)
	}

	seen := make(map[model.GroupID]bool, len(t))
	for i, g := range t {
		if strings.TrimSpace(string(g.ID)) == "" {
			return fmt.Errorf("%w: group %d has no id", common.ErrInvalidGroupMap, i)
		}
		if seen[g.ID] {
			return fmt.Errorf("%w: duplicate group %q", common.ErrInvalidGroupMap, g.ID)
		}
		seen[g.ID] = true

		if len(g.Aliases) == 0 {
			return fmt.Errorf("%w: group %q has no aliases", common.ErrInvalidGroupMap, g.ID)
		}
		for _, alias := range g.Aliases {
			// An empty alias is contained in every line.
			if strings.TrimSpace(alias) == "" {
				return fmt.Errorf("%w: group %q has an empty alias", common.ErrInvalidGroupMap, g.ID)
			}
		}
	}
	return nil
}

// LoadGroupTable reads a group table from a YAML file.
func LoadGroupTable(path string) (GroupTable, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open group table: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := ReadGroupTable(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read group table %s: %w", path, err)
	}
	return table, nil
}

// ReadGroupTable decodes a group table from YAML. Both an ordered mapping
//
//	MINE: [マイン, MINE]
//	M: [M, エム]
//
// and a list of {id, aliases} objects are accepted. Mapping order is kept.
func ReadGroupTable(r io.Reader) (GroupTable, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", common.ErrInvalidGroupMap)
		}
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", common.ErrInvalidGroupMap)
	}

	root := doc.Content[0]
	var table GroupTable

	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			var aliases []string
			if err := root.Content[i+1].Decode(&aliases); err != nil {
				return nil, fmt.Errorf("group %q: %w", root.Content[i].Value, err)
			}
			table = append(table, GroupKeywords{
				ID:      model.GroupID(root.Content[i].Value),
				Aliases: aliases,
			})
		}
	case yaml.SequenceNode:
		if err := root.Decode(&table); err != nil {
			return nil, fmt.Errorf("failed to decode group list: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: expected a mapping or a list", common.ErrInvalidGroupMap)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
