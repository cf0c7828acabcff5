package scheduling

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

func TestScore(t *testing.T) {
	a := member("a", "Avery", models.FamilyRoleParent, "")
	b := member("b", "Bo", models.FamilyRoleKid, "")

	done := instanceFor("Dishes", &a)
	done.Completed = true
	tasks := []models.TaskInstance{
		instanceFor("Dishes", &a),
		instanceFor("Laundry", &a),
		done,
		instanceFor("Trash", &b),
		instanceFor("Vacuum", nil),
	}

	require.InDelta(t, 2+0.3*3, Score(a, tasks), 1e-9)
	require.InDelta(t, 1+0.3*1, Score(b, tasks), 1e-9)
	require.Zero(t, Score(member("c", "Cam", models.FamilyRoleKid, ""), tasks))
}

func TestScore_PendingOutweighsHistory(t *testing.T) {
	a := member("a", "Avery", models.FamilyRoleParent, "")
	b := member("b", "Bo", models.FamilyRoleParent, "")

	var tasks []models.TaskInstance
	for i := 0; i < 3; i++ {
		finished := instanceFor("Dishes", &a)
		finished.Completed = true
		tasks = append(tasks, finished)
	}
	tasks = append(tasks, instanceFor("Dishes", &b))

	require.Less(t, Score(a, tasks), Score(b, tasks))
}

func TestScore_NameFallbackOnlyWithoutID(t *testing.T) {
	a := member("a", "Sam", models.FamilyRoleParent, "")
	twin := member("b", "Sam", models.FamilyRoleKid, "")
	tasks := []models.TaskInstance{
		{Title: "Legacy", AssigneeName: "Sam"},
		instanceFor("Dishes", &a),
	}

	require.InDelta(t, 2.6, Score(a, tasks), 1e-9)
	require.InDelta(t, 1.3, Score(twin, tasks), 1e-9)
}

func TestScoreByName(t *testing.T) {
	avery := member("a", "Avery", models.FamilyRoleParent, "")
	finished := models.TaskInstance{Title: "Trash", AssigneeName: "Avery", Completed: true}
	legacy := []models.TaskInstance{
		{Title: "Dishes", AssigneeName: "Avery"},
		finished,
		{Title: "Laundry", AssigneeName: "Bo"},
		{Title: "Vacuum", AssigneeName: models.Unassigned},
	}

	tests := []struct {
		name string
		who  string
		want float64
	}{
		{"named member", "Avery", 1 + 0.3*2},
		{"other member", "Bo", 1 + 0.3*1},
		{"unknown name", "Cam", 0},
		{"unassigned sentinel", models.Unassigned, 0},
		{"blank name", "", 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.InDelta(t, test.want, ScoreByName(test.who, legacy), 1e-9)
		})
	}

	require.InDelta(t, Score(avery, legacy), ScoreByName("Avery", legacy), 1e-9)
}

func TestSeedLoadsAndClone(t *testing.T) {
	a := member("a", "Avery", models.FamilyRoleParent, "")
	b := member("b", "Bo", models.FamilyRoleKid, "")
	loads := SeedLoads([]models.Member{a, b}, []models.TaskInstance{instanceFor("Dishes", &a)})

	require.InDelta(t, 1.3, loads["a"], 1e-9)
	require.Zero(t, loads["b"])
	require.InDelta(t, 1.3, loads.Spread(), 1e-9)

	clone := loads.Clone()
	clone["b"] = 5
	require.Zero(t, loads["b"])

	var empty LoadTable
	require.Empty(t, empty.Clone())
	require.Zero(t, empty.Spread())
}
