package reorder

import (
	"testing"

	"github.com/jonathan/hash-resume/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() types.ResumeDocument {
	return types.ResumeDocument{
		Experience: []types.ExperienceEntry{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}},
		Education:  []types.EducationEntry{{ID: "d1"}, {ID: "d2"}},
		Projects:   []types.ProjectEntry{{ID: "p1"}, {ID: "p2"}},
		Skills:     []string{},
	}
}

func ids(entries []types.ExperienceEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestReorder_SameList(t *testing.T) {
	doc := testDocument()
	after, ok := Reorder(doc, Gesture{
		SourceKind: types.ListExperience, SourceIndex: 0,
		DestKind: types.ListExperience, DestIndex: 2,
	})

	require.True(t, ok)
	assert.Equal(t, []string{"e2", "e3", "e1"}, ids(after.Experience))
	assert.Equal(t, doc.Education, after.Education)
	assert.Equal(t, doc.Projects, after.Projects)
}

func TestReorder_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		gesture Gesture
	}{
		{
			name:    "cross list",
			gesture: Gesture{SourceKind: types.ListExperience, SourceIndex: 0, DestKind: types.ListEducation, DestIndex: 1},
		},
		{
			name:    "same position",
			gesture: Gesture{SourceKind: types.ListProjects, SourceIndex: 1, DestKind: types.ListProjects, DestIndex: 1},
		},
		{
			name:    "destination out of range",
			gesture: Gesture{SourceKind: types.ListEducation, SourceIndex: 0, DestKind: types.ListEducation, DestIndex: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			after, ok := Reorder(doc, tt.gesture)
			assert.False(t, ok)
			assert.Equal(t, doc, after)
		})
	}
}

func TestEngine_DragAndDrop(t *testing.T) {
	var e Engine
	require.NoError(t, e.Start(types.ListExperience, 2, RegionHandle))

	assert.True(t, e.IsMoving(types.ListExperience, 2))
	assert.False(t, e.IsMoving(types.ListExperience, 1))
	assert.False(t, e.IsMoving(types.ListProjects, 2))

	after, ok := e.Drop(testDocument(), types.ListExperience, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"e3", "e1", "e2"}, ids(after.Experience))

	_, active := e.Active()
	assert.False(t, active)
	assert.False(t, e.IsMoving(types.ListExperience, 2))
}

func TestEngine_StartOutsideHandle(t *testing.T) {
	var e Engine
	assert.ErrorIs(t, e.Start(types.ListEducation, 0, RegionBody), ErrNotHandle)

	_, active := e.Active()
	assert.False(t, active)
}

func TestEngine_StartUnknownList(t *testing.T) {
	var e Engine
	assert.ErrorIs(t, e.Start("skills", 0, RegionHandle), ErrUnknownList)
}

func TestEngine_SecondStartRejected(t *testing.T) {
	var e Engine
	require.NoError(t, e.Start(types.ListProjects, 0, RegionHandle))
	assert.ErrorIs(t, e.Start(types.ListProjects, 1, RegionHandle), ErrDragInProgress)

	source, active := e.Active()
	assert.True(t, active)
	assert.Equal(t, Source{Kind: types.ListProjects, Index: 0}, source)
}

func TestEngine_CrossListDropClearsFlag(t *testing.T) {
	var e Engine
	require.NoError(t, e.Start(types.ListExperience, 0, RegionHandle))

	doc := testDocument()
	after, ok := e.Drop(doc, types.ListEducation, 1)
	assert.False(t, ok)
	assert.Equal(t, doc, after)
	assert.False(t, e.IsMoving(types.ListExperience, 0))
}

func TestEngine_DropWithoutDrag(t *testing.T) {
	var e Engine
	doc := testDocument()
	after, ok := e.Drop(doc, types.ListExperience, 1)
	assert.False(t, ok)
	assert.Equal(t, doc, after)
}

func TestEngine_Cancel(t *testing.T) {
	var e Engine
	require.NoError(t, e.Start(types.ListEducation, 1, RegionHandle))
	e.Cancel()

	assert.False(t, e.IsMoving(types.ListEducation, 1))
	require.NoError(t, e.Start(types.ListEducation, 0, RegionHandle))
}

func TestEngine_StartEntryTracksID(t *testing.T) {
	var e Engine
	doc := testDocument()
	require.NoError(t, e.StartEntry(doc, types.ListExperience, 0, RegionHandle))

	// e1 moves to the end before the drop
	doc.Experience = []types.ExperienceEntry{{ID: "e2"}, {ID: "e3"}, {ID: "e1"}}
	source, active := e.Resolve(doc)
	require.True(t, active)
	assert.Equal(t, Source{Kind: types.ListExperience, Index: 2, ID: "e1"}, source)

	after, ok := e.Drop(doc, types.ListExperience, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"e1", "e2", "e3"}, ids(after.Experience))
}

func TestEngine_StartEntryDroppedAfterRemoval(t *testing.T) {
	var e Engine
	doc := testDocument()
	require.NoError(t, e.StartEntry(doc, types.ListExperience, 1, RegionHandle))

	doc.Experience = []types.ExperienceEntry{{ID: "e1"}, {ID: "e3"}}
	after, ok := e.Drop(doc, types.ListExperience, 0)
	assert.False(t, ok)
	assert.Equal(t, doc, after)

	_, active := e.Active()
	assert.False(t, active)
}

func TestEngine_ResolveCancelsMissingEntry(t *testing.T) {
	var e Engine
	doc := testDocument()
	require.NoError(t, e.StartEntry(doc, types.ListProjects, 1, RegionHandle))

	doc.Projects = doc.Projects[:1]
	_, active := e.Resolve(doc)
	assert.False(t, active)
	assert.NoError(t, e.StartEntry(doc, types.ListProjects, 0, RegionHandle))
}
