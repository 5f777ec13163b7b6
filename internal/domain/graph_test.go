package domain

import "testing"

func TestNodeTypeForLabel(t *testing.T) {
	tests := []struct {
		label   EntityLabel
		want    NodeType
		tracked bool
	}{
		{LabelPerson, NodeTypePerson, true},
		{LabelGPE, NodeTypePlace, true},
		{LabelLocation, NodeTypePlace, true},
		{LabelFacility, NodeTypePlace, true},
		{LabelOrg, NodeTypeOrg, true},
		{LabelDate, NodeTypeDate, true},
		{LabelEvent, NodeTypeEvent, true},
		{LabelNORP, NodeTypeGroup, true},
		{LabelWorkOfArt, NodeTypeWork, true},
		{EntityLabel("MONEY"), "", false},
		{EntityLabel("CARDINAL"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			got, ok := NodeTypeForLabel(tt.label)
			if ok != tt.tracked {
				t.Fatalf("NodeTypeForLabel(%s) tracked = %v, want %v", tt.label, ok, tt.tracked)
			}
			if got != tt.want {
				t.Errorf("NodeTypeForLabel(%s) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestValidNodeType(t *testing.T) {
	for _, v := range []string{"person", "place", "org", "date", "event", "group", "work", "attribute"} {
		if !ValidNodeType(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}
	if ValidNodeType("organization") {
		t.Error("organization is not a node type")
	}
}

func TestLinkSignatureIgnoresEvidence(t *testing.T) {
	a := Link{Source: "Meera", Target: "Mumbai", Relation: "wait", SceneID: "s1", Sentence: "Meera waited in Mumbai."}
	b := Link{Source: "Meera", Target: "Mumbai", Relation: "wait", SceneID: "s2", Sentence: "Meera waited again."}
	if a.Signature() != b.Signature() {
		t.Error("links differing only in evidence should share a signature")
	}

	c := Link{Source: "Mumbai", Target: "Meera", Relation: "wait"}
	if a.Signature() == c.Signature() {
		t.Error("signature must be directional")
	}
}

func TestNodeHasMention(t *testing.T) {
	n := Node{ID: "Arjun", Mentions: []string{"scene_1", "scene_3"}}
	if !n.HasMention("scene_3") {
		t.Error("expected scene_3 mention")
	}
	if n.HasMention("scene_2") {
		t.Error("unexpected scene_2 mention")
	}
}
