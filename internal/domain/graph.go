package domain

import "time"

type NodeType string

const (
	NodeTypePerson    NodeType = "person"
	NodeTypePlace     NodeType = "place"
	NodeTypeOrg       NodeType = "org"
	NodeTypeDate      NodeType = "date"
	NodeTypeEvent     NodeType = "event"
	NodeTypeGroup     NodeType = "group"
	NodeTypeWork      NodeType = "work"
	NodeTypeAttribute NodeType = "attribute"
)

func ValidNodeType(t string) bool {
	switch NodeType(t) {
	case NodeTypePerson, NodeTypePlace, NodeTypeOrg, NodeTypeDate,
		NodeTypeEvent, NodeTypeGroup, NodeTypeWork, NodeTypeAttribute:
		return true
	}
	return false
}

// entityLabelTypes maps analyzer entity labels onto node types.
// Labels missing from this map are not tracked in the story bible.
var entityLabelTypes = map[EntityLabel]NodeType{
	LabelPerson:    NodeTypePerson,
	LabelGPE:       NodeTypePlace,
	LabelLocation:  NodeTypePlace,
	LabelFacility:  NodeTypePlace,
	LabelOrg:       NodeTypeOrg,
	LabelDate:      NodeTypeDate,
	LabelEvent:     NodeTypeEvent,
	LabelNORP:      NodeTypeGroup,
	LabelWorkOfArt: NodeTypeWork,
}

// NodeTypeForLabel returns the node type for an entity label and whether
// the label is tracked at all.
func NodeTypeForLabel(label EntityLabel) (NodeType, bool) {
	t, ok := entityLabelTypes[label]
	return t, ok
}

// Node is one entity in a story bible. ID is the trimmed surface text.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Mentions []string `json:"mentions"`
	Count    int      `json:"count"`
}

// HasMention reports whether the node was seen in the given scene.
func (n *Node) HasMention(sceneID string) bool {
	for _, m := range n.Mentions {
		if m == sceneID {
			return true
		}
	}
	return false
}

// DefaultRelation labels edges from sentences without a verb.
const DefaultRelation = "interacts with"

// Link is a directed, labeled relation between two nodes backed by evidence text.
type Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	SceneID  string `json:"scene_id"`
	Sentence string `json:"sentence"`
}

// LinkSignature is the identity of a link for deduplication. The evidence
// sentence is deliberately not part of it.
type LinkSignature struct {
	Source   string
	Target   string
	Relation string
}

func (l Link) Signature() LinkSignature {
	return LinkSignature{Source: l.Source, Target: l.Target, Relation: l.Relation}
}

// SceneGraph is the extraction result for a single text submission. It is
// the input to a merge and is never persisted on its own.
type SceneGraph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// StoryBible is the persisted graph for one narrative unit. Version is
// bumped on every replace; zero means the record has never been written.
type StoryBible struct {
	ScriptID  string    `json:"script_id"`
	Nodes     []Node    `json:"nodes"`
	Links     []Link    `json:"links"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// GraphStats is the size summary returned after an analysis.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Links int `json:"links"`
}
