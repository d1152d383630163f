/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package privilege

import (
	"sort"
	"strings"
)

// Node is one entry of the canonical privilege tree. A group node's mask
// is the union of its descendant leaves and its level is the maximum
// level among them.
type Node struct {
	Keyword  string
	Aliases  []string
	Mask     BitMask
	Level    Level
	Children []*Node
}

// Registry maps privilege keywords onto a fixed-width bit vector and
// knows, for every privilege, the finest level it may be granted at.
// It is immutable once built; lookups need no locking.
type Registry struct {
	root      *Node
	keywords  map[string]BitMask
	grantable [ColumnLevel + 1]BitMask
}

// NewRegistry builds the registry from the static privilege table.
// Construction is deterministic; the table below is the single source
// of truth for the privilege vocabulary.
func NewRegistry() *Registry {
	b := &tableBuilder{}
	root := b.group("ALL", aliases("ALL PRIVILEGES"),
		b.group("SHOW", nil,
			b.leaf("SHOW DATABASES", DatabaseLevel),
			b.leaf("SHOW TABLES", TableLevel),
			b.leaf("SHOW COLUMNS", ColumnLevel),
		),
		b.leaf("SELECT", ColumnLevel),
		b.leaf("INSERT", ColumnLevel),
		b.group("ALTER", nil,
			b.group("ALTER TABLE", nil,
				b.leaf("UPDATE", ColumnLevel, "ALTER UPDATE"),
				b.leaf("DELETE", ColumnLevel, "ALTER DELETE"),
				b.group("ALTER COLUMN", nil,
					b.leaf("ADD COLUMN", ColumnLevel, "ALTER ADD COLUMN"),
					b.leaf("MODIFY COLUMN", ColumnLevel, "ALTER MODIFY COLUMN"),
					b.leaf("DROP COLUMN", ColumnLevel, "ALTER DROP COLUMN"),
					b.leaf("COMMENT COLUMN", ColumnLevel, "ALTER COMMENT COLUMN"),
					b.leaf("CLEAR COLUMN", ColumnLevel, "ALTER CLEAR COLUMN"),
					b.leaf("RENAME COLUMN", ColumnLevel, "ALTER RENAME COLUMN"),
				),
				b.group("ALTER INDEX", aliases("INDEX"),
					b.leaf("ADD INDEX", TableLevel, "ALTER ADD INDEX"),
					b.leaf("DROP INDEX", TableLevel, "ALTER DROP INDEX"),
					b.leaf("MATERIALIZE INDEX", TableLevel, "ALTER MATERIALIZE INDEX"),
				),
				b.group("ALTER CONSTRAINT", aliases("CONSTRAINT"),
					b.leaf("ADD CONSTRAINT", TableLevel, "ALTER ADD CONSTRAINT"),
					b.leaf("DROP CONSTRAINT", TableLevel, "ALTER DROP CONSTRAINT"),
				),
				b.leaf("ALTER TTL", TableLevel, "ALTER MODIFY TTL"),
				b.leaf("ALTER SETTINGS", TableLevel, "ALTER SETTING", "ALTER MODIFY SETTING"),
				b.leaf("ALTER ORDER BY", TableLevel, "ALTER MODIFY ORDER BY"),
				b.group("ALTER PARTITION", nil,
					b.leaf("ALTER FETCH PARTITION", TableLevel, "FETCH PARTITION"),
					b.leaf("ALTER FREEZE PARTITION", TableLevel, "FREEZE PARTITION"),
					b.leaf("ALTER MOVE PARTITION", TableLevel, "ALTER MOVE PART", "MOVE PARTITION"),
				),
			),
			b.group("ALTER VIEW", nil,
				b.leaf("ALTER VIEW REFRESH", TableLevel, "REFRESH VIEW"),
				b.leaf("ALTER VIEW MODIFY QUERY", TableLevel),
			),
		),
		b.group("CREATE", nil,
			b.leaf("CREATE DATABASE", DatabaseLevel),
			b.leaf("CREATE TABLE", TableLevel),
			b.leaf("CREATE VIEW", TableLevel),
			b.leaf("CREATE TEMPORARY TABLE", GlobalLevel),
		),
		b.group("DROP", nil,
			b.leaf("DROP DATABASE", DatabaseLevel),
			b.leaf("DROP TABLE", TableLevel),
			b.leaf("DROP VIEW", TableLevel),
		),
		b.leaf("TRUNCATE", TableLevel, "TRUNCATE TABLE"),
		b.leaf("OPTIMIZE", TableLevel, "OPTIMIZE TABLE"),
		b.leaf("KILL QUERY", GlobalLevel),
		b.group("ACCESS MANAGEMENT", nil,
			b.leaf("CREATE USER", GlobalLevel),
			b.leaf("ALTER USER", GlobalLevel),
			b.leaf("DROP USER", GlobalLevel),
			b.leaf("CREATE ROLE", GlobalLevel),
			b.leaf("ALTER ROLE", GlobalLevel),
			b.leaf("DROP ROLE", GlobalLevel),
			b.leaf("ROLE ADMIN", GlobalLevel),
			b.leaf("CREATE ROW POLICY", GlobalLevel, "CREATE POLICY"),
			b.leaf("ALTER ROW POLICY", GlobalLevel, "ALTER POLICY"),
			b.leaf("DROP ROW POLICY", GlobalLevel, "DROP POLICY"),
			b.leaf("CREATE QUOTA", GlobalLevel),
			b.leaf("ALTER QUOTA", GlobalLevel),
			b.leaf("DROP QUOTA", GlobalLevel),
		),
		b.group("SYSTEM", nil,
			b.leaf("SYSTEM SHUTDOWN", GlobalLevel, "SHUTDOWN"),
			b.leaf("SYSTEM RELOAD CONFIG", GlobalLevel, "RELOAD CONFIG"),
			b.leaf("SYSTEM FLUSH LOGS", GlobalLevel, "FLUSH LOGS"),
		),
		b.leaf("INTROSPECTION", GlobalLevel, "INTROSPECTION FUNCTIONS"),
	)

	r := &Registry{
		root:     root,
		keywords: make(map[string]BitMask),
	}
	r.keywords["USAGE"] = 0
	r.keywords["NONE"] = 0
	r.keywords["NO PRIVILEGES"] = 0
	r.index(root)
	return r
}

func (r *Registry) index(n *Node) {
	r.keywords[n.Keyword] = n.Mask
	for _, alias := range n.Aliases {
		r.keywords[strings.ToUpper(alias)] = n.Mask
	}
	if len(n.Children) == 0 {
		// A leaf is grantable at its own level and at every coarser one.
		for l := GlobalLevel; l <= n.Level; l++ {
			r.grantable[l] |= n.Mask
		}
	}
	for _, child := range n.Children {
		r.index(child)
	}
}

// BitsFor returns the mask of a single keyword. Lookup is
// case-insensitive and includes aliases.
func (r *Registry) BitsFor(keyword string) (BitMask, error) {
	bits, ok := r.keywords[strings.ToUpper(keyword)]
	if !ok {
		return 0, &UnknownPrivilegeError{Name: keyword}
	}
	return bits, nil
}

// BitsForMany returns the union of the masks of all keywords. Any
// unknown keyword fails the whole call.
func (r *Registry) BitsForMany(keywords ...string) (BitMask, error) {
	var bits BitMask
	for _, keyword := range keywords {
		b, err := r.BitsFor(keyword)
		if err != nil {
			return 0, err
		}
		bits |= b
	}
	return bits, nil
}

// KeywordsFor returns the minimal covering keyword list for bits: at
// each node of the privilege tree, if the requested bits cover the
// node's full mask a single keyword is emitted instead of descending.
// An empty mask yields ["USAGE"].
func (r *Registry) KeywordsFor(bits BitMask) []string {
	var keywords []string
	collectKeywords(bits, r.root, &keywords)
	if len(keywords) == 0 {
		keywords = append(keywords, "USAGE")
	}
	return keywords
}

func collectKeywords(bits BitMask, n *Node, keywords *[]string) {
	matching := bits & n.Mask
	if matching == 0 {
		return
	}
	if matching == n.Mask {
		*keywords = append(*keywords, n.Keyword)
		return
	}
	for _, child := range n.Children {
		collectKeywords(bits, child, keywords)
	}
}

// MaskString renders bits as a comma-separated keyword list, like
// "SELECT, INSERT, ALTER TABLE".
func (r *Registry) MaskString(bits BitMask) string {
	return strings.Join(r.KeywordsFor(bits), ", ")
}

// GrantableMask returns the union of leaf masks legal to grant at the
// given level. Masks are monotonic: every privilege grantable at a fine
// level is grantable at all coarser ones.
func (r *Registry) GrantableMask(level Level) BitMask {
	if level < GlobalLevel || level > ColumnLevel {
		return 0
	}
	return r.grantable[level]
}

// CheckGrantable verifies that all requested bits may be granted at the
// given level.
func (r *Registry) CheckGrantable(bits BitMask, level Level) error {
	illegal := bits &^ r.GrantableMask(level)
	if illegal != 0 {
		return &NotGrantableError{Keywords: r.MaskString(illegal), Level: level}
	}
	return nil
}

// All returns the mask of every privilege the registry knows.
func (r *Registry) All() BitMask {
	return r.root.Mask
}

// Keywords returns every canonical keyword, sorted. Used by the admin
// API to enumerate the vocabulary.
func (r *Registry) Keywords() []string {
	var keywords []string
	var walk func(n *Node)
	walk = func(n *Node) {
		keywords = append(keywords, n.Keyword)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(r.root)
	sort.Strings(keywords)
	return keywords
}

type tableBuilder struct {
	nextBit uint
}

func (b *tableBuilder) leaf(keyword string, level Level, leafAliases ...string) *Node {
	n := &Node{
		Keyword: keyword,
		Aliases: leafAliases,
		Mask:    BitMask(1) << b.nextBit,
		Level:   level,
	}
	b.nextBit++
	if b.nextBit > 64 {
		panic("privilege.registry.bit.budget.exceeded")
	}
	return n
}

func (b *tableBuilder) group(keyword string, groupAliases []string, children ...*Node) *Node {
	n := &Node{
		Keyword:  keyword,
		Aliases:  groupAliases,
		Children: children,
	}
	for _, child := range children {
		n.Mask |= child.Mask
		if child.Level > n.Level {
			n.Level = child.Level
		}
	}
	return n
}

func aliases(names ...string) []string {
	return names
}
