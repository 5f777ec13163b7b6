package service

import (
	"testing"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneOne() ([]domain.Node, []domain.Link) {
	nodes := []domain.Node{
		{ID: "Arjun", Type: domain.NodeTypePerson, Mentions: []string{"scene_1"}, Count: 1},
		{ID: "Karan", Type: domain.NodeTypePerson, Mentions: []string{"scene_1"}, Count: 1},
	}
	links := []domain.Link{
		{Source: "Arjun", Target: "Karan", Relation: "meet", SceneID: "scene_1", Sentence: arjunMeeting},
		{Source: "Karan", Target: "Arjun", Relation: "meet", SceneID: "scene_1", Sentence: arjunMeeting},
	}
	return nodes, links
}

func TestMergeGraph_IdentityIntoEmptyBase(t *testing.T) {
	nodes, links := sceneOne()

	gotNodes, gotLinks := MergeGraph(nil, nil, nodes, links)

	assert.Equal(t, nodes, gotNodes)
	assert.Equal(t, links, gotLinks)
}

func TestMergeGraph_CountReplacedMentionsUnioned(t *testing.T) {
	existing := []domain.Node{{ID: "Arjun", Type: domain.NodeTypePerson, Mentions: []string{"scene_1"}, Count: 5}}
	incoming := []domain.Node{{ID: "Arjun", Type: domain.NodeTypePerson, Mentions: []string{"scene_2", "scene_1"}, Count: 2}}

	nodes, _ := MergeGraph(existing, nil, incoming, nil)

	require.Len(t, nodes, 1)
	assert.Equal(t, 2, nodes[0].Count, "count is replaced, not summed")
	assert.ElementsMatch(t, []string{"scene_1", "scene_2"}, nodes[0].Mentions)
}

func TestMergeGraph_RepeatedMergeIsStableExceptCount(t *testing.T) {
	baseNodes, baseLinks := sceneOne()
	newNodes := []domain.Node{{ID: "Arjun", Type: domain.NodeTypePerson, Mentions: []string{"scene_2"}, Count: 3}}
	newLinks := []domain.Link{{Source: "Arjun", Target: "Karan", Relation: "fight", SceneID: "scene_2", Sentence: "Arjun fought Karan."}}

	n1, l1 := MergeGraph(baseNodes, baseLinks, newNodes, newLinks)
	newNodes[0].Count = 7
	n2, l2 := MergeGraph(n1, l1, newNodes, newLinks)

	assert.Equal(t, n1[0].Mentions, n2[0].Mentions)
	assert.Equal(t, 3, n1[0].Count)
	assert.Equal(t, 7, n2[0].Count)
	assert.Equal(t, l1, l2)
}

func TestMergeGraph_FirstEvidenceWins(t *testing.T) {
	_, baseLinks := sceneOne()
	restated := []domain.Link{
		{Source: "Arjun", Target: "Karan", Relation: "meet", SceneID: "scene_9", Sentence: "Arjun met Karan again."},
		{Source: "Arjun", Target: "Karan", Relation: "meet", SceneID: "scene_9", Sentence: "Arjun met Karan once more."},
	}

	_, links := MergeGraph(nil, baseLinks, nil, restated)

	require.Len(t, links, 2)
	assert.Equal(t, arjunMeeting, links[0].Sentence)
	assert.Equal(t, "scene_1", links[0].SceneID)
}

func TestMergeGraph_MultiEdgeDifferentRelations(t *testing.T) {
	_, baseLinks := sceneOne()
	extra := []domain.Link{{Source: "Arjun", Target: "Karan", Relation: "betray", SceneID: "scene_3", Sentence: "Arjun betrayed Karan."}}

	_, links := MergeGraph(nil, baseLinks, nil, extra)

	assert.Len(t, links, 3)
	assert.Equal(t, "betray", links[2].Relation)
}

func TestMergeGraph_UniqueIDsAndSignatures(t *testing.T) {
	baseNodes, baseLinks := sceneOne()
	newNodes := []domain.Node{
		{ID: "Karan", Type: domain.NodeTypePerson, Mentions: []string{"scene_2"}, Count: 1},
		{ID: "Delhi", Type: domain.NodeTypePlace, Mentions: []string{"scene_2"}, Count: 1},
		{ID: "Delhi", Type: domain.NodeTypePlace, Mentions: []string{"scene_3"}, Count: 4},
	}
	newLinks := append(append([]domain.Link(nil), baseLinks...), baseLinks...)

	nodes, links := MergeGraph(baseNodes, baseLinks, newNodes, newLinks)

	ids := make(map[string]int)
	for _, n := range nodes {
		ids[n.ID]++
	}
	for id, c := range ids {
		assert.Equal(t, 1, c, "duplicate node %s", id)
	}
	sigs := make(map[domain.LinkSignature]int)
	for _, l := range links {
		sigs[l.Signature()]++
	}
	for sig, c := range sigs {
		assert.Equal(t, 1, c, "duplicate link %+v", sig)
	}
	assert.Equal(t, []string{"Arjun", "Karan", "Delhi"}, []string{nodes[0].ID, nodes[1].ID, nodes[2].ID})
	assert.Equal(t, []string{"scene_2", "scene_3"}, nodes[2].Mentions)
	assert.Equal(t, 4, nodes[2].Count)
}

func TestMergeGraph_DoesNotMutateInputs(t *testing.T) {
	existing := []domain.Node{{ID: "Meera", Type: domain.NodeTypePerson, Mentions: []string{"scene_1"}, Count: 1}}
	incoming := []domain.Node{{ID: "Meera", Type: domain.NodeTypePerson, Mentions: []string{"scene_2"}, Count: 9}}

	nodes, _ := MergeGraph(existing, nil, incoming, nil)
	nodes[0].Mentions[0] = "changed"

	assert.Equal(t, []string{"scene_1"}, existing[0].Mentions)
	assert.Equal(t, 1, existing[0].Count)
	assert.Equal(t, []string{"scene_2"}, incoming[0].Mentions)
}
